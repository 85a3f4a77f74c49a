package npm

// HostType identifies one of the four host collections exposed by the
// Nginx Proxy Manager API under /api/nginx/<type>.
type HostType string

const (
	HostTypeProxy       HostType = "proxy-hosts"
	HostTypeRedirection HostType = "redirection-hosts"
	HostTypeDead        HostType = "dead-hosts"
	HostTypeStream      HostType = "streams"
)

// IsValid returns true if the host type is one of the four known collections.
func (t HostType) IsValid() bool {
	switch t {
	case HostTypeProxy, HostTypeRedirection, HostTypeDead, HostTypeStream:
		return true
	default:
		return false
	}
}

// Health is the response from the unauthenticated GET /api endpoint.
type Health struct {
	Status  string `json:"status"`
	Setup   bool   `json:"setup"`
	Version struct {
		Major    int `json:"major"`
		Minor    int `json:"minor"`
		Revision int `json:"revision"`
	} `json:"version"`
}

// CreateProxyHostData is the payload for creating a proxy host.
// Optional fields are pointers so that unset and explicit-false/zero can be
// distinguished when forwarding to the upstream API.
type CreateProxyHostData struct {
	DomainNames           []string       `json:"domain_names"`
	ForwardScheme         string         `json:"forward_scheme"`
	ForwardHost           string         `json:"forward_host"`
	ForwardPort           int            `json:"forward_port"`
	CertificateID         *int           `json:"certificate_id,omitempty"`
	SSLForced             *bool          `json:"ssl_forced,omitempty"`
	HSTSEnabled           *bool          `json:"hsts_enabled,omitempty"`
	HSTSSubdomains        *bool          `json:"hsts_subdomains,omitempty"`
	HTTP2Support          *bool          `json:"http2_support,omitempty"`
	BlockExploits         *bool          `json:"block_exploits,omitempty"`
	CachingEnabled        *bool          `json:"caching_enabled,omitempty"`
	AllowWebsocketUpgrade *bool          `json:"allow_websocket_upgrade,omitempty"`
	AccessListID          *int           `json:"access_list_id,omitempty"`
	AdvancedConfig        *string        `json:"advanced_config,omitempty"`
	Meta                  map[string]any `json:"meta,omitempty"`
	Locations             []any          `json:"locations,omitempty"`
}

// UpdateProxyHostData is the payload for updating a proxy host.
// All fields are optional; only set fields are sent.
type UpdateProxyHostData struct {
	DomainNames           []string       `json:"domain_names,omitempty"`
	ForwardScheme         *string        `json:"forward_scheme,omitempty"`
	ForwardHost           *string        `json:"forward_host,omitempty"`
	ForwardPort           *int           `json:"forward_port,omitempty"`
	CertificateID         *int           `json:"certificate_id,omitempty"`
	SSLForced             *bool          `json:"ssl_forced,omitempty"`
	HSTSEnabled           *bool          `json:"hsts_enabled,omitempty"`
	HSTSSubdomains        *bool          `json:"hsts_subdomains,omitempty"`
	HTTP2Support          *bool          `json:"http2_support,omitempty"`
	BlockExploits         *bool          `json:"block_exploits,omitempty"`
	CachingEnabled        *bool          `json:"caching_enabled,omitempty"`
	AllowWebsocketUpgrade *bool          `json:"allow_websocket_upgrade,omitempty"`
	AccessListID          *int           `json:"access_list_id,omitempty"`
	AdvancedConfig        *string        `json:"advanced_config,omitempty"`
	Meta                  map[string]any `json:"meta,omitempty"`
}

// CertificateMeta carries the Let's Encrypt / DNS challenge options for
// certificate creation.
type CertificateMeta struct {
	LetsencryptEmail       *string `json:"letsencrypt_email,omitempty"`
	LetsencryptAgree       *bool   `json:"letsencrypt_agree,omitempty"`
	DNSChallenge           *bool   `json:"dns_challenge,omitempty"`
	DNSProvider            *string `json:"dns_provider,omitempty"`
	DNSProviderCredentials *string `json:"dns_provider_credentials,omitempty"`
}

// IsZero returns true if no meta option is set.
func (m CertificateMeta) IsZero() bool {
	return m.LetsencryptEmail == nil && m.LetsencryptAgree == nil &&
		m.DNSChallenge == nil && m.DNSProvider == nil && m.DNSProviderCredentials == nil
}

// CreateCertificateData is the payload for requesting a certificate.
type CreateCertificateData struct {
	Provider    string           `json:"provider"`
	NiceName    string           `json:"nice_name"`
	DomainNames []string         `json:"domain_names"`
	Meta        *CertificateMeta `json:"meta,omitempty"`
}

// AccessListItem is a username/password credential in an access list.
type AccessListItem struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AccessListClient is an IP-based allow/deny rule in an access list.
type AccessListClient struct {
	Address   string `json:"address"`
	Directive string `json:"directive"`
}

// CreateAccessListData is the payload for creating an access list.
type CreateAccessListData struct {
	Name       string             `json:"name"`
	SatisfyAny *bool              `json:"satisfy_any,omitempty"`
	PassAuth   *bool              `json:"pass_auth,omitempty"`
	Items      []AccessListItem   `json:"items,omitempty"`
	Clients    []AccessListClient `json:"clients,omitempty"`
}

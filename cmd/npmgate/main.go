// npmgate exposes the Nginx Proxy Manager admin API as MCP tools over an
// authenticated streamable HTTP endpoint.
package main

import "github.com/npmgate/npmgate/cmd/npmgate/cmd"

func main() {
	cmd.Execute()
}

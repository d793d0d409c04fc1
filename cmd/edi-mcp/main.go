// SPDX-License-Identifier: Apache-2.0

package main

import "github.com/edidecode/edi-mcp/internal/cli"

func main() {
	cli.Execute()
}

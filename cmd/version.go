package cmd

import (
	"fmt"

	"github.com/lepinkainen/rowterm/types"
)

// VersionCmd prints the build version
type VersionCmd struct{}

func (cmd *VersionCmd) Run(appCtx *types.AppContext) error {
	fmt.Printf("rowterm %s\n", appCtx.VersionOrDefault())
	return nil
}

package cmd

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func NewStatCmd(c *Context) *cobra.Command {
	ctx := context.Background()
	subc := &cobra.Command{
		Use:   "stat [url]",
		Short: "Probe a remote resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return onRunStat(ctx, c, args[0])
		},
	}
	return subc
}

func onRunStat(ctx context.Context, c *Context, target string) error {
	ent, err := c.DAV.NewEntry(target)
	if err != nil {
		return fmt.Errorf("build entry failed, err:%w", err)
	}
	if !ent.IndexFileInfo(ctx) {
		return fmt.Errorf("resource not reachable, url:%s", target)
	}
	ctype := ent.ContentType
	if len(ctype) == 0 {
		ctype = "-"
	}
	fmt.Printf("host: %s\nsize: %s\ntype: %s\n", ent.Host(), humanize.IBytes(uint64(ent.Size)), ctype)
	return nil
}

func init() {
	register(NewStatCmd)
}

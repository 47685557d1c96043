package cmd

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

func NewLsCmd(c *Context) *cobra.Command {
	ctx := context.Background()
	subc := &cobra.Command{
		Use:   "ls [url]",
		Short: "List files under a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return onRunLs(ctx, c, args[0])
		},
	}
	return subc
}

func onRunLs(ctx context.Context, c *Context, target string) error {
	ent, err := c.DAV.NewEntry(target)
	if err != nil {
		return fmt.Errorf("build entry failed, err:%w", err)
	}
	files := ent.ListFiles(ctx)
	for _, f := range files {
		ctype := f.ContentType
		if len(ctype) == 0 {
			ctype = "-"
		}
		fmt.Printf("%-12s %-32s %s\n", humanize.IBytes(uint64(f.Size)), ctype, f.DisplayName)
	}
	logutil.GetLogger(ctx).Info("list finish", zap.String("url", target), zap.Int("total", len(files)))
	return nil
}

func init() {
	register(NewLsCmd)
}

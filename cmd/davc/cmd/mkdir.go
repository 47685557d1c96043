package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

func NewMkdirCmd(c *Context) *cobra.Command {
	ctx := context.Background()
	subc := &cobra.Command{
		Use:   "mkdir [url]",
		Short: "Create a remote collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return onRunMkdir(ctx, c, args[0])
		},
	}
	return subc
}

func onRunMkdir(ctx context.Context, c *Context, target string) error {
	ent, err := c.DAV.NewEntry(target)
	if err != nil {
		return fmt.Errorf("build entry failed, err:%w", err)
	}
	if !ent.MakeAsDir(ctx) {
		return fmt.Errorf("create collection failed, url:%s", target)
	}
	logutil.GetLogger(ctx).Info("create collection succ", zap.String("url", target))
	return nil
}

func init() {
	register(NewMkdirCmd)
}

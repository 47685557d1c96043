package cmd

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type getArgs struct {
	outdir  string
	replace bool
}

func NewGetCmd(c *Context) *cobra.Command {
	args := &getArgs{}
	ctx := context.Background()
	subc := &cobra.Command{
		Use:   "get [url]...",
		Short: "Download remote files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, urls []string) error {
			return onRunGet(ctx, c, args, urls)
		},
	}
	subc.PersistentFlags().StringVarP(&args.outdir, "outdir", "o", ".", "local directory to save into")
	subc.PersistentFlags().BoolVar(&args.replace, "replace", false, "overwrite existing local files")
	return subc
}

func localNameOf(target string) string {
	return path.Base(strings.TrimSuffix(target, "/"))
}

func onRunGet(ctx context.Context, c *Context, args *getArgs, urls []string) error {
	eg, subctx := errgroup.WithContext(ctx)
	eg.SetLimit(c.Config.Thread)
	for _, target := range urls {
		ent, err := c.DAV.NewEntry(target)
		if err != nil {
			return fmt.Errorf("build entry failed, err:%w", err)
		}
		dst := filepath.Join(args.outdir, localNameOf(target))
		eg.Go(func() error {
			start := time.Now()
			if !ent.DownloadTo(subctx, dst, args.replace) {
				return fmt.Errorf("download failed, url:%s", ent.RawURL)
			}
			logutil.GetLogger(ctx).Info("download succ",
				zap.String("url", ent.RawURL),
				zap.String("dst", dst),
				zap.Duration("cost", time.Since(start)))
			return nil
		})
	}
	return eg.Wait()
}

func init() {
	register(NewGetCmd)
}

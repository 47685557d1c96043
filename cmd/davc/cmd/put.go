package cmd

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type putArgs struct {
	files []string
}

func NewPutCmd(c *Context) *cobra.Command {
	args := &putArgs{}
	ctx := context.Background()
	subc := &cobra.Command{
		Use:   "put [collection url]",
		Short: "Upload local files into a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, urls []string) error {
			return onRunPut(ctx, c, args, urls[0])
		},
	}
	subc.PersistentFlags().StringSliceVarP(&args.files, "file", "f", nil, "local files to upload")
	return subc
}

// determineMimeType picks the content type by extension, the library falls
// back to application/octet-stream on its own when this comes back empty.
func determineMimeType(filename string) string {
	return mime.TypeByExtension(filepath.Ext(filename))
}

func onRunPut(ctx context.Context, c *Context, args *putArgs, base string) error {
	if len(args.files) == 0 {
		return fmt.Errorf("no upload file found")
	}
	base = strings.TrimSuffix(base, "/")
	eg, subctx := errgroup.WithContext(ctx)
	eg.SetLimit(c.Config.Thread)
	for _, file := range args.files {
		file := file
		target := base + "/" + filepath.Base(file)
		ent, err := c.DAV.NewEntry(target)
		if err != nil {
			return fmt.Errorf("build entry failed, err:%w", err)
		}
		eg.Go(func() error {
			start := time.Now()
			if !ent.Upload(subctx, file, determineMimeType(file)) {
				return fmt.Errorf("upload failed, file:%s", file)
			}
			logutil.GetLogger(ctx).Info("upload succ",
				zap.String("file", file),
				zap.String("url", ent.RawURL),
				zap.Duration("cost", time.Since(start)))
			return nil
		})
	}
	return eg.Wait()
}

func init() {
	register(NewPutCmd)
}

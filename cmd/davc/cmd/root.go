package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/davclient/client"
	"github.com/xxxsen/davclient/cmd/davc/config"
	"github.com/xxxsen/davclient/credential"
)

const (
	defaultConfigFileEnv = "DAVC_CONFIG"
)

var cmds []CreateFunc

type Context struct {
	DAV    *client.Client
	Config *config.Config
}

type CreateFunc func(ctx *Context) *cobra.Command

func register(cr CreateFunc) {
	cmds = append(cmds, cr)
}

func initContext(ctx *Context, cfgs []string) error {
	var c *config.Config
	var err error
	for _, cfg := range cfgs {
		if len(cfg) == 0 {
			continue
		}
		c, err = config.Parse(cfg)
		if err == nil {
			break
		}
	}
	if c == nil {
		return fmt.Errorf("no valid config file found, last err:%w", err)
	}
	ctx.Config = c
	logger.Init("", c.LogLevel, 0, 0, 0, true)
	// the core only reads the snapshot, the cli owns its lifecycle
	credential.Set(c.User, c.Pass)
	ctx.DAV = client.New()
	return nil
}

func NewRoot() *cobra.Command {
	var configFile string
	ctx := &Context{}
	var rootCmd = &cobra.Command{
		Use:   "davc",
		Short: "WebDAV CLI tool",
	}
	for _, cr := range cmds {
		rootCmd.AddCommand(cr(ctx))
	}
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		envConfigFile, _ := os.LookupEnv(defaultConfigFileEnv)
		return initContext(ctx, []string{configFile, "/etc/davc/davc_config.json", envConfigFile})
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file")
	return rootCmd
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/polymesh/engine/configs"
	"github.com/polymesh/engine/internal/app"
	"github.com/polymesh/engine/internal/app/version"
)

// GlobalFlags 全局标志
type GlobalFlags struct {
	ConfigFile string // 配置文件（JSON / YAML）
	Dev        bool   // 使用内置开发配置
}

func newRootCmd() *cobra.Command {
	flags := &GlobalFlags{}
	root := &cobra.Command{
		Use:           "pmengine",
		Short:         "合规、统计、结算与募资引擎",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flags.ConfigFile, "config", "c", "", "配置文件路径 (JSON 或 YAML)")
	root.PersistentFlags().BoolVar(&flags.Dev, "dev", false, "使用内置开发配置 (忽略 --config)")

	root.AddCommand(
		newNodeCmd(flags),
		newGenesisCmd(flags),
		newReportCmd(flags),
		newVersionCmd(),
	)
	return root
}

// appOptions 一次性命令不启动 HTTP 接口与出块循环
func (f *GlobalFlags) appOptions(oneShot bool) []app.Option {
	var opts []app.Option
	switch {
	case f.Dev:
		opts = append(opts, app.WithEmbeddedConfig(configs.GetDevelopmentConfig()))
	case f.ConfigFile != "":
		opts = append(opts, app.WithConfigFile(f.ConfigFile))
	}
	if oneShot {
		opts = append(opts, app.WithoutAPI(), app.WithoutProducer())
	}
	return opts
}

// withEngine 启动引擎执行 fn 后停止
func (f *GlobalFlags) withEngine(fn func(engine *app.Engine) error) (err error) {
	a, err := app.Start(f.appOptions(true)...)
	if err != nil {
		return err
	}
	defer func() {
		if stopErr := a.Stop(); err == nil {
			err = stopErr
		}
	}()
	return fn(a.Engine())
}

package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/polymesh/engine/internal/app"
	"github.com/polymesh/engine/internal/app/version"
)

func newNodeCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "node",
		Short: "启动节点（出块循环与 HTTP 查询接口）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pterm.DefaultHeader.Println("pmengine " + version.Version)

			a, err := app.Start(flags.appOptions(false)...)
			if err != nil {
				return err
			}
			block, now, err := a.Engine().Runtime.Head(cmd.Context())
			if err != nil {
				_ = a.Stop()
				return err
			}
			pterm.Success.Printfln("节点已启动，当前区块 #%d，时间 %d", block, now)
			pterm.Info.Println("按 Ctrl+C 停止")
			return a.Wait()
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "显示版本信息",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			pterm.Println(version.GetFullVersion())
		},
	}
}

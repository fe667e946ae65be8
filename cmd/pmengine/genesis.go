package main

import (
	"sort"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/polymesh/engine/configs"
	"github.com/polymesh/engine/internal/app"
)

func newGenesisCmd(flags *GlobalFlags) *cobra.Command {
	genesis := &cobra.Command{
		Use:   "genesis",
		Short: "初始状态管理",
	}
	genesis.AddCommand(&cobra.Command{
		Use:   "apply <file>",
		Short: "写入 YAML 描述的身份、声明、资产与场所",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := app.LoadGenesis(args[0])
			if err != nil {
				return err
			}
			return flags.withEngine(func(engine *app.Engine) error {
				result, err := app.ApplyGenesis(cmd.Context(), engine, g)
				if err != nil {
					return err
				}
				pterm.Success.Printfln("初始状态已写入: %s", args[0])
				return pterm.DefaultTable.WithHasHeader().WithData(genesisRows(result)).Render()
			})
		},
	})
	genesis.AddCommand(&cobra.Command{
		Use:   "example",
		Short: "输出示例初始状态文件",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = cmd.OutOrStdout().Write(configs.GetExampleGenesis())
		},
	})
	return genesis
}

func genesisRows(result app.GenesisResult) pterm.TableData {
	names := make([]string, 0, len(result.Identities))
	for name := range result.Identities {
		names = append(names, name)
	}
	sort.Strings(names)

	data := pterm.TableData{{"类别", "名称", "标识"}}
	for _, name := range names {
		data = append(data, []string{"identity", name, result.Identities[name].String()})
	}
	for _, id := range result.Venues {
		data = append(data, []string{"venue", "", strconv.FormatUint(uint64(id), 10)})
	}
	return data
}

package main

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/polymesh/engine/internal/app"
	"github.com/polymesh/engine/internal/core/runtime"
	"github.com/polymesh/engine/pkg/types"
)

func newReportCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "report <asset> <sender> <receiver>",
		Short: "输出一笔转账的合规报告（DID 为十六进制，- 表示空）",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			asset, err := types.NewTicker(args[0])
			if err != nil {
				return err
			}
			sender, err := parseParty(args[1])
			if err != nil {
				return fmt.Errorf("sender: %w", err)
			}
			receiver, err := parseParty(args[2])
			if err != nil {
				return fmt.Errorf("receiver: %w", err)
			}

			return flags.withEngine(func(engine *app.Engine) error {
				var report types.AssetComplianceResult
				err := engine.Runtime.View(cmd.Context(), func(c *runtime.Context) error {
					var err error
					report, err = engine.Compliance.ComplianceReport(c, asset, sender, receiver)
					return err
				})
				if err != nil {
					return err
				}
				return renderReport(asset, report)
			})
		},
	}
}

// parseParty "-" 或空串表示无此方
func parseParty(s string) (*types.IdentityId, error) {
	if s == "" || s == "-" {
		return nil, nil
	}
	id, err := types.ParseIdentityId(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func renderReport(asset types.Ticker, report types.AssetComplianceResult) error {
	pterm.DefaultSection.Printfln("合规报告 %s", asset)
	if report.Paused {
		pterm.Warning.Println("合规检查已暂停，所有转账放行")
	}
	if len(report.Requirements) > 0 {
		if err := pterm.DefaultTable.WithHasHeader().WithData(reportRows(report)).Render(); err != nil {
			return err
		}
	}
	if report.Result {
		pterm.Success.Println("通过")
	} else {
		pterm.Error.Println("未通过")
	}
	return nil
}

func reportRows(report types.AssetComplianceResult) pterm.TableData {
	data := pterm.TableData{{"需求", "方向", "条件", "结果"}}
	for _, req := range report.Requirements {
		id := strconv.FormatUint(uint64(req.Id), 10)
		for _, c := range req.SenderConditions {
			data = append(data, []string{id, "sender", describeCondition(c.Condition), mark(c.Result)})
		}
		for _, c := range req.ReceiverConditions {
			data = append(data, []string{id, "receiver", describeCondition(c.Condition), mark(c.Result)})
		}
		if len(req.SenderConditions)+len(req.ReceiverConditions) == 0 {
			data = append(data, []string{id, "", "(无条件)", mark(req.Result)})
		}
	}
	return data
}

func describeCondition(c types.Condition) string {
	ct := c.ConditionType
	switch {
	case ct.Claim != nil:
		return fmt.Sprintf("%s(%s)", ct.Kind, ct.Claim.Type)
	case len(ct.Claims) > 0:
		names := ""
		for i, claim := range ct.Claims {
			if i > 0 {
				names += ","
			}
			names += claim.Type.String()
		}
		return fmt.Sprintf("%s(%s)", ct.Kind, names)
	case ct.Target != nil && ct.Target.ExternalAgent:
		return fmt.Sprintf("%s(external agent)", ct.Kind)
	case ct.Target != nil:
		return fmt.Sprintf("%s(%s)", ct.Kind, ct.Target.Identity)
	default:
		return ct.Kind.String()
	}
}

func mark(ok bool) string {
	if ok {
		return "✔"
	}
	return "✘"
}

package cmd

import (
	"context"
	"os"

	"emperror.dev/errors"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/voluzi/debugpilot/internal/top"
	"github.com/voluzi/debugpilot/pkg/cpusampler"
	"github.com/voluzi/debugpilot/pkg/server"
)

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Shows live per-thread cpu usage of a running server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(os.Stdout.Fd()) {
			return errors.New("top needs a terminal, use history --follow instead")
		}
		client := server.NewClient(serverURL)
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		p := tea.NewProgram(top.NewModel(), tea.WithAltScreen(), tea.WithContext(ctx))

		go func() {
			if history, err := client.GetThreadCpuUsage(ctx); err == nil && len(history) > 0 {
				p.Send(top.RecordMsg{Record: history[len(history)-1]})
			}
			err := client.StreamThreadCpuUsage(ctx, func(record cpusampler.TimeAndThreadCpuUsages) {
				p.Send(top.RecordMsg{Record: record})
			})
			if err != nil && ctx.Err() == nil {
				p.Send(top.ErrMsg{Err: err})
			}
		}()

		_, err := p.Run()
		if err != nil && ctx.Err() != nil {
			return nil
		}
		return err
	},
}

func init() {
	addServerFlag(topCmd)
	rootCmd.AddCommand(topCmd)
}

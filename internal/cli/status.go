// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/jeranaias/polychat/internal/config"
	"github.com/jeranaias/polychat/internal/logging"
	"github.com/jeranaias/polychat/internal/model"
	"github.com/jeranaias/polychat/internal/provider"
	"github.com/jeranaias/polychat/internal/ui/styles"
	"github.com/jeranaias/polychat/internal/util"
)

// probeTimeout bounds each backend check.
const probeTimeout = 5 * time.Second

// probeResult is the outcome of checking one backend.
type probeResult struct {
	ID       model.ProviderID
	Endpoint string
	Err      error
	Latency  time.Duration
}

// OK reports whether the backend is usable.
func (r probeResult) OK() bool { return r.Err == nil }

func newStatusCommand(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check every backend",
		Long: `Check each backend without sending a chat message.

local probes GET /v1/models on the LM Studio server. cloud and generative
report whether an API key is configured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}
			log, closer, err := logging.FromConfig(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closer.Close()

			reg, closeBackends := buildRegistry(cfg, log)
			defer closeBackends()

			results := probeAll(cmd.Context(), reg, endpoints(cfg))
			out := cmd.OutOrStdout()
			lipgloss.SetColorProfile(colorProfile(out))
			fmt.Fprintln(out, renderStatusTable(results, cfg.Chat.Provider))
			return nil
		},
	}
}

// endpoints describes where each backend is reached, with keys masked.
func endpoints(cfg *config.Config) map[model.ProviderID]string {
	return map[model.ProviderID]string{
		model.ProviderCloud:      fmt.Sprintf("%s (key %s)", cfg.Cloud.BaseURL, util.MaskSecret(cfg.Cloud.APIKey)),
		model.ProviderLocal:      cfg.Local.URL,
		model.ProviderGenerative: fmt.Sprintf("%s (key %s)", cfg.Generative.Model, util.MaskSecret(cfg.Generative.APIKey)),
	}
}

// probeAll checks every registered adapter concurrently. Adapters that
// cannot be probed are reported as OK.
func probeAll(ctx context.Context, reg provider.Registry, where map[model.ProviderID]string) []probeResult {
	adapters := reg.All()
	results := make([]probeResult, len(adapters))

	var wg sync.WaitGroup
	for i, a := range adapters {
		results[i] = probeResult{ID: a.ID(), Endpoint: where[a.ID()]}
		p, ok := a.(provider.Prober)
		if !ok {
			continue
		}
		wg.Add(1)
		go func(i int, p provider.Prober) {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, probeTimeout)
			defer cancel()
			start := time.Now()
			results[i].Err = p.Probe(pctx)
			results[i].Latency = time.Since(start)
		}(i, p)
	}
	wg.Wait()
	return results
}

// statusText summarizes a probe error for the table.
func statusText(r probeResult) string {
	if r.OK() {
		return "ready"
	}
	var perr *provider.Error
	if errors.As(r.Err, &perr) {
		return util.FirstLine(perr.Message)
	}
	return util.FirstLine(r.Err.Error())
}

func renderStatusTable(results []probeResult, active model.ProviderID) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		name := r.ID.DisplayName()
		if r.ID == active {
			name += " *"
		}
		rows = append(rows, []string{
			name,
			r.Endpoint,
			styles.RenderStatus(r.OK(), util.TruncateWidth(statusText(r), 60)),
		})
	}

	header := lipgloss.NewStyle().Bold(true).Foreground(styles.TextPrimary).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.Overlay)).
		Headers("PROVIDER", "ENDPOINT", "STATUS").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})

	return t.String() + "\n* active provider"
}

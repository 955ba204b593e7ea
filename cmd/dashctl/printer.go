package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/repairdesk/dashboard-state/internal/core/domain"
)

type kindStyle struct {
	mark  string
	color lipgloss.Color
}

var kindStyles = map[domain.NotificationKind]kindStyle{
	domain.NotificationSuccess: {"✓", lipgloss.Color("2")},
	domain.NotificationError:   {"✗", lipgloss.Color("1")},
	domain.NotificationWarning: {"!", lipgloss.Color("3")},
	domain.NotificationInfo:    {"i", lipgloss.Color("4")},
}

// printer renders interaction store changes as terminal lines: every new
// notification once, and the loading text when the global spinner starts.
// Colours are dropped when out is not a terminal.
type printer struct {
	out      io.Writer
	renderer *lipgloss.Renderer

	mu      sync.Mutex
	seen    map[string]struct{}
	loading bool
}

func newPrinter(out io.Writer) *printer {
	return &printer{
		out:      out,
		renderer: lipgloss.NewRenderer(out),
		seen:     make(map[string]struct{}),
	}
}

func (p *printer) render(st domain.InteractionState) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if st.GlobalLoading && !p.loading {
		dim := p.renderer.NewStyle().Faint(true)
		fmt.Fprintln(p.out, dim.Render("… "+st.LoadingText))
	}
	p.loading = st.GlobalLoading

	for _, n := range st.Notifications {
		if _, ok := p.seen[n.ID]; ok {
			continue
		}
		p.seen[n.ID] = struct{}{}

		ks := kindStyles[n.Kind]
		mark := p.renderer.NewStyle().Foreground(ks.color).Render(ks.mark)
		if n.Title != "" {
			title := p.renderer.NewStyle().Bold(true).Render(n.Title + ":")
			fmt.Fprintf(p.out, "%s %s %s\n", mark, title, n.Message)
			continue
		}
		fmt.Fprintf(p.out, "%s %s\n", mark, n.Message)
	}
}

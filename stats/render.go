package stats

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

var lang language.Tag = language.English

// BatchReport 批次模擬報表：每個會話的最終統計 + 整體評估
type BatchReport struct {
	Game     string         `json:"game"     yaml:"game"`
	Preset   string         `json:"preset"   yaml:"preset"`
	Sessions int            `json:"sessions" yaml:"sessions"`
	Estimate Estimate       `json:"estimate" yaml:"estimate"`
	Results  []SessionStats `json:"results,omitempty" yaml:"results,omitempty"`
}

// NewBatchReport 由最終統計建立報表（Results 保留原順序）
func NewBatchReport(game, preset string, results []SessionStats) *BatchReport {
	return &BatchReport{
		Game:     game,
		Preset:   preset,
		Sessions: len(results),
		Estimate: EstimateSessions(results),
		Results:  results,
	}
}

// BatchReportRender 定義輸出行為
type BatchReportRender interface {
	Write(w io.Writer, r *BatchReport) error
}

// Json渲染
type JsonBatchReportRender struct{}

func (jr *JsonBatchReportRender) Write(w io.Writer, r *BatchReport) error {
	return json.NewEncoder(w).Encode(r)
}

// YAML渲染
type YAMLBatchReportRender struct{}

func (yr *YAMLBatchReportRender) Write(w io.Writer, r *BatchReport) error {
	return forceReadableList(w, r)
}

// Table渲染
type TableBatchReportRender struct{}

func (tr *TableBatchReportRender) Write(w io.Writer, r *BatchReport) error {
	keys, msg := r.fmtBasic()
	_, err := io.WriteString(w, fmtTable(fmt.Sprintf("%s / %s", r.Game, r.Preset), keys, msg))
	return err
}

func (r *BatchReport) WriteWith(w io.Writer, rep BatchReportRender) error {
	return rep.Write(w, r)
}

// StdOut 以表格輸出，附上耗時
func (r *BatchReport) StdOut(w io.Writer, ut time.Duration) {
	rounds := 0
	for _, s := range r.Results {
		rounds += s.RoundsCompleted
	}
	io.WriteString(w, formatDuration(ut, rounds))
	(&TableBatchReportRender{}).Write(w, r)
}

// SessionTable 單一會話統計的表格
func SessionTable(title string, s SessionStats) string {
	p := message.NewPrinter(lang)
	msg := map[string]string{
		"Rounds":       p.Sprintf("%d", s.RoundsCompleted),
		"Wins":         p.Sprintf("%d", s.Wins),
		"Losses":       p.Sprintf("%d", s.Losses),
		"Win Rate":     p.Sprintf("%.2f %%", 100.0*s.WinRate()),
		"Total Wager":  s.TotalWagered.String(),
		"Total Profit": s.TotalProfit.String(),
		"Streak":       p.Sprintf("%d", s.CurrentStreak),
		"Best Streak":  p.Sprintf("%d", s.BestStreak),
		"Biggest Win":  s.BiggestWin.String(),
		"Biggest Loss": s.BiggestLoss.String(),
		"Stop Reason":  string(s.StopReason),
	}
	keys := []string{"Rounds", "Wins", "Losses", "Win Rate", "Total Wager", "Total Profit", "Streak", "Best Streak", "Biggest Win", "Biggest Loss", "Stop Reason"}
	if s.Err != "" {
		msg["Error"] = s.Err
		keys = append(keys, "Error")
	}
	return fmtTable(title, keys, msg)
}

// ============================================================
// ** 內部方法 **
// ============================================================

func formatDuration(d time.Duration, rounds int) string {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	rps := int(float64(rounds) / sec)
	if sec < 60.0 {
		return p.Sprintf("used: %.2f seconds\nrps : %d rounds/sec\n", sec, rps)
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		return p.Sprintf("used: %dm %ds\nrps : %d rounds/sec\n", m, s, rps)
	}
	return p.Sprintf("used: %dh:%dm:%ds\nrps : %d rounds/sec\n", h, m, s, rps)
}

func (r *BatchReport) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	e := r.Estimate
	msg := map[string]string{
		"Sessions":       p.Sprintf("%d", r.Sessions),
		"Profit Mean":    p.Sprintf("%.4f", e.Profit.Mean),
		"Profit STD":     p.Sprintf("%.4f", e.Profit.Std),
		"Profit Median":  p.Sprintf("%.4f [%.4f,%.4f]", e.Profit.Median.Hat, e.Profit.Median.CI.Lo, e.Profit.Median.CI.Hi),
		"Profit P10":     p.Sprintf("%.4f", e.Profit.P10.Hat),
		"Profit P90":     p.Sprintf("%.4f", e.Profit.P90.Hat),
		"Profit Range":   p.Sprintf("[%.4f,%.4f]", e.Profit.Min, e.Profit.Max),
		"Winners":        p.Sprintf("%.2f%% [%.2f%%,%.2f%%]", 100*e.Winners.Hat, 100*e.Winners.CI.Lo, 100*e.Winners.CI.Hi),
		"Rounds Mean":    p.Sprintf("%.2f", e.Rounds.Mean),
		"Rounds Median":  p.Sprintf("%.0f", e.Rounds.Median),
		"Round Win Rate": p.Sprintf("%.2f %%", 100*e.Rounds.WinRate),
	}
	keys := []string{"Sessions", "Profit Mean", "Profit STD", "Profit Median", "Profit P10", "Profit P90", "Profit Range", "Winners", "Rounds Mean", "Rounds Median", "Round Win Rate"}
	for _, reason := range Reasons {
		ps, ok := e.StopReason[reason]
		if !ok || ps.Hat == 0 {
			continue
		}
		k := "Stop " + string(reason)
		msg[k] = p.Sprintf("%.2f%% [%.2f%%,%.2f%%]", 100*ps.Hat, 100*ps.CI.Lo, 100*ps.CI.Hi)
		keys = append(keys, k)
	}
	return keys, msg
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)
	if titleW > totalInner {
		maxValLen += titleW - totalInner
		totalInner = titleW
	}

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", totalInner) + "+\n"

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	var sb strings.Builder
	sb.WriteString(top)
	sb.WriteString(p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right)))
	sb.WriteString(divider)
	for _, k := range keys {
		sb.WriteString(p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k]))))
	}
	sb.WriteString(divider)
	return sb.String()
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}

// YAML 內層方法
func forceReadableList[T any](w io.Writer, t *T) error {
	var node yaml.Node
	if err := node.Encode(t); err != nil {
		return err
	}

	// 最內層的一維 sequence 改用 flow style: [...]，外層維度保持展開
	styleReadableSequences(&node)

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(&node)
}

func styleReadableSequences(n *yaml.Node) {
	if n == nil {
		return
	}

	switch n.Kind {
	case yaml.DocumentNode, yaml.MappingNode:
		for _, c := range n.Content {
			styleReadableSequences(c)
		}

	case yaml.SequenceNode:
		hasChild := false
		for _, c := range n.Content {
			if c != nil && (c.Kind == yaml.SequenceNode || c.Kind == yaml.MappingNode) {
				hasChild = true
			}
			styleReadableSequences(c)
		}
		if !hasChild {
			n.Style = yaml.FlowStyle
		}
	}
}

package diag

import "forkvm/internal/token"

// Reporter — минимальный контракт получения диагностик от фаз.
type Reporter interface {
	Report(d Diagnostic)
}

// ReportError is a shortcut for SevError diagnostics.
func ReportError(r Reporter, code Code, pos token.Pos, msg string) {
	if r == nil {
		return
	}
	r.Report(Diagnostic{Severity: SevError, Code: code, Pos: pos, Message: msg})
}

// BagReporter — адаптер, который пишет в *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(d)
}

// NopReporter drops everything.
type NopReporter struct{}

func (NopReporter) Report(Diagnostic) {}

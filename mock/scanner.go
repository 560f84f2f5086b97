package mock

import "github.com/fwojciec/inlay"

var _ inlay.Scanner = (*Scanner)(nil)

// Scanner is a mock implementation of inlay.Scanner.
type Scanner struct {
	SelectFn    func(doc, selector string) ([]inlay.Span, error)
	ShellTagsFn func(s string) []string
}

func (s *Scanner) Select(doc, selector string) ([]inlay.Span, error) {
	return s.SelectFn(doc, selector)
}

func (s *Scanner) ShellTags(frag string) []string {
	if s.ShellTagsFn == nil {
		return nil
	}
	return s.ShellTagsFn(frag)
}

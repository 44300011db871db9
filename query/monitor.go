package query

import (
	"github.com/poiesic/jobtrail/core"
)

// Monitor provides hooks to observe answering a question.
// Implement this interface to trace retrieval and generation.
type Monitor interface {
	Start(question string)
	AfterRetrieval(results []*core.SearchResult)
	VerbatimHit(result *core.SearchResult)
	BeforeGenerate(prompt string)
	Finish(answer *Answer)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                        {}
func (n *noopMonitor) AfterRetrieval(_ []*core.SearchResult) {}
func (n *noopMonitor) VerbatimHit(_ *core.SearchResult)      {}
func (n *noopMonitor) BeforeGenerate(_ string)               {}
func (n *noopMonitor) Finish(_ *Answer)                      {}

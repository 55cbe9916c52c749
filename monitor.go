package ethosprompt

import (
	"github.com/Uththunga/Ethos-Prompt-sub003/core"
	"github.com/Uththunga/Ethos-Prompt-sub003/fusion"
	"github.com/Uththunga/Ethos-Prompt-sub003/query"
	"github.com/Uththunga/Ethos-Prompt-sub003/storage"
)

// RetrievalMonitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps and results during retrieval.
type RetrievalMonitor interface {
	Start(rawQuery string)
	AfterEnhancement(enhanced query.EnhancedQuery)
	AfterSemanticSearch(matches []storage.VectorMatch)
	AfterKeywordSearch(matches []storage.KeywordMatch)
	SourceDegraded(source string, err error)
	AfterFusion(results []fusion.Fused)
	Finish(result *core.RetrievedContext)
}

// noopMonitor is a no-op implementation of RetrievalMonitor
type noopMonitor struct{}

var _ RetrievalMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                             {}
func (n *noopMonitor) AfterEnhancement(_ query.EnhancedQuery)     {}
func (n *noopMonitor) AfterSemanticSearch(_ []storage.VectorMatch) {}
func (n *noopMonitor) AfterKeywordSearch(_ []storage.KeywordMatch) {}
func (n *noopMonitor) SourceDegraded(_ string, _ error)           {}
func (n *noopMonitor) AfterFusion(_ []fusion.Fused)               {}
func (n *noopMonitor) Finish(_ *core.RetrievedContext)            {}

package pipeline

import (
	"fmt"

	"github.com/Uththunga/Ethos-Prompt-sub003/core"
)

// validTransitions is the pipeline state machine. StageFailed is reachable
// from every non-terminal stage; terminal stages permit nothing.
var validTransitions = map[core.JobStage][]core.JobStage{
	core.StagePending:    {core.StageExtracting, core.StageFailed},
	core.StageExtracting: {core.StageChunking, core.StageFailed},
	core.StageChunking:   {core.StageEmbedding, core.StageFailed},
	core.StageEmbedding:  {core.StageIndexing, core.StageFailed},
	core.StageIndexing:   {core.StageCompleted, core.StageFailed},
	core.StageCompleted:  {},
	core.StageFailed:     {},
}

// canTransition reports whether the state machine permits moving from one
// stage to another.
func canTransition(from, to core.JobStage) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// transition validates and records a stage change on the job.
func transition(job *core.ProcessingJob, to core.JobStage, now nowFunc) error {
	if !canTransition(job.Stage, to) {
		return fmt.Errorf("%w: %w: %s -> %s",
			core.ErrPipelineStage, ErrInvalidTransition, job.Stage, to)
	}
	job.RecordTransition(to, now())
	return nil
}

package analysis

// State names one stage of the pipeline. A run instance moves strictly
// forward through these; FAILED is terminal from any non-DONE state.
type State string

const (
	StateInit           State = "INIT"
	StateLoadingContext State = "LOADING_CONTEXT"
	StateFetchingFiles  State = "FETCHING_FILES"
	StateAnalyzing      State = "ANALYZING"
	StateScoring        State = "SCORING"
	StatePersisting     State = "PERSISTING"
	StateDone           State = "DONE"
	StateFailed         State = "FAILED"
)

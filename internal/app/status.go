package app

// Run stages reported by Status.
const (
	StageIdle     = "idle"
	StageScraping = "scraping"
	StagePhrases  = "phrases"
	StageDone     = "done"
	StageFailed   = "failed"
)

// Status is a point-in-time view of the current or last run.
type Status struct {
	RunID        string `json:"run_id,omitempty"`
	Stage        string `json:"stage"`
	Artist       string `json:"artist,omitempty"`
	ArtistsDone  int    `json:"artists_done"`
	ArtistsTotal int    `json:"artists_total"`
	Pipeline     string `json:"pipeline"`
	RawPath      string `json:"raw_path,omitempty"`
	WordlistPath string `json:"wordlist_path,omitempty"`
}

// Status returns a snapshot safe to read while a run is in progress.
func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.status
	s.Pipeline = "idle"
	if r.active != nil {
		s.Pipeline = r.active.State().String()
	}
	return s
}

func (r *Runner) begin(runID, rawPath, wordlistPath string, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = nil
	r.status = Status{
		RunID:        runID,
		Stage:        StageScraping,
		ArtistsTotal: total,
		RawPath:      rawPath,
		WordlistPath: wordlistPath,
	}
}

func (r *Runner) setArtist(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status.Artist = name
}

func (r *Runner) artistDone() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status.ArtistsDone++
}

func (r *Runner) setStage(stage string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status.Stage = stage
	r.status.Artist = ""
}

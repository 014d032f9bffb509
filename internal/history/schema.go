package history

// Schema DDL. Timestamps are fixed-width UTC text (see timeLayout).
const (
	createRuns = `CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,
    base_url TEXT NOT NULL,
    started_at TEXT NOT NULL,
    finished_at TEXT NOT NULL,
    passed INTEGER NOT NULL,
    failed INTEGER NOT NULL
);`

	createResults = `CREATE TABLE IF NOT EXISTS results (
    run_id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    probe TEXT NOT NULL,
    name TEXT NOT NULL,
    success INTEGER NOT NULL,
    details TEXT NOT NULL,
    checked_at TEXT NOT NULL,
    PRIMARY KEY (run_id, seq),
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);`

	createRunsStartedIndex = `CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);`
)

var schema = []string{createRuns, createResults, createRunsStartedIndex}

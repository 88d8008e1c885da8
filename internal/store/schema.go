package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS kv_state (
    key                  TEXT PRIMARY KEY,
    value                BLOB NOT NULL,
    updated_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS milestones (
    id                   INTEGER PRIMARY KEY AUTOINCREMENT,
    band                 REAL NOT NULL,
    reached_at           TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_milestones_reached ON milestones(reached_at);
`

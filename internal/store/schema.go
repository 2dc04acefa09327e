package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS file_tracker (
    file_path            TEXT PRIMARY KEY,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL,
    parsed_at            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
    id                   TEXT NOT NULL,
    file_path            TEXT NOT NULL REFERENCES file_tracker(file_path) ON DELETE CASCADE,
    kind                 TEXT NOT NULL,
    amount               INTEGER NOT NULL,
    occurred_at          TEXT NOT NULL,
    category_id          TEXT,
    description          TEXT,
    counterparty         TEXT,
    reference            TEXT,
    is_recurring         INTEGER NOT NULL DEFAULT 0,
    source               TEXT,
    PRIMARY KEY (file_path, id)
);

CREATE INDEX IF NOT EXISTS idx_transactions_occurred ON transactions(occurred_at);
CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions(category_id);
`

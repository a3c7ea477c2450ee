package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS sheets (
    file_path            TEXT NOT NULL,
    options_key          TEXT NOT NULL,
    sheet                TEXT,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL,
    cleaned_cells        INTEGER NOT NULL DEFAULT 0,
    parse_failures       INTEGER NOT NULL DEFAULT 0,
    parsed_at            TEXT NOT NULL,
    PRIMARY KEY (file_path, options_key)
);

CREATE TABLE IF NOT EXISTS sheet_channels (
    file_path            TEXT NOT NULL,
    options_key          TEXT NOT NULL,
    position             INTEGER NOT NULL,
    channel              TEXT NOT NULL,
    PRIMARY KEY (file_path, options_key, position),
    FOREIGN KEY (file_path, options_key) REFERENCES sheets(file_path, options_key) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS sheet_rows (
    file_path            TEXT NOT NULL,
    options_key          TEXT NOT NULL,
    position             INTEGER NOT NULL,
    month                TEXT NOT NULL,
    month_id             INTEGER NOT NULL,
    revenue              REAL NOT NULL,
    customers            REAL NOT NULL,
    line                 INTEGER NOT NULL,
    PRIMARY KEY (file_path, options_key, position),
    FOREIGN KEY (file_path, options_key) REFERENCES sheets(file_path, options_key) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS row_investments (
    file_path            TEXT NOT NULL,
    options_key          TEXT NOT NULL,
    position             INTEGER NOT NULL,
    channel              TEXT NOT NULL,
    amount               REAL NOT NULL,
    PRIMARY KEY (file_path, options_key, position, channel),
    FOREIGN KEY (file_path, options_key) REFERENCES sheets(file_path, options_key) ON DELETE CASCADE
);
`

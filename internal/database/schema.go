package database

// Schema mirrors the layout the dashboard has used since the first release:
// companies and analyses are the hot path, news_sentiment and market_indices
// feed the dashboard panels, client cache tables hold raw API payloads.
const schema = `
CREATE TABLE IF NOT EXISTS companies (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    symbol      TEXT UNIQUE NOT NULL,
    name        TEXT,
    sector      TEXT,
    industry    TEXT,
    market_cap  REAL,
    created_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS esg_analyses (
    id                  TEXT PRIMARY KEY,
    symbol              TEXT NOT NULL,
    environmental_score REAL NOT NULL,
    social_score        REAL NOT NULL,
    governance_score    REAL NOT NULL,
    overall_score       REAL NOT NULL,
    risk_rating         TEXT NOT NULL,
    sentiment_data      BLOB,
    financial_data      BLOB,
    analysis_date       TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (symbol) REFERENCES companies (symbol)
);

CREATE TABLE IF NOT EXISTS news_sentiment (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    symbol          TEXT NOT NULL,
    article_title   TEXT,
    article_url     TEXT,
    source          TEXT,
    sentiment_score REAL,
    sentiment_label TEXT,
    published_at    TIMESTAMP,
    analyzed_at     TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS market_indices (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    index_symbol    TEXT NOT NULL,
    index_name      TEXT,
    price           REAL,
    change_amount   REAL,
    change_percent  REAL,
    timestamp       TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS client_overview (
    symbol     TEXT PRIMARY KEY,
    data       TEXT NOT NULL,
    expires_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS client_news (
    symbol     TEXT PRIMARY KEY,
    data       TEXT NOT NULL,
    expires_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS client_quotes (
    symbol     TEXT PRIMARY KEY,
    data       TEXT NOT NULL,
    expires_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS client_balance_sheet (
    symbol     TEXT PRIMARY KEY,
    data       TEXT NOT NULL,
    expires_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_symbol_date ON esg_analyses (symbol, analysis_date);
CREATE INDEX IF NOT EXISTS idx_sentiment_symbol ON news_sentiment (symbol, analyzed_at);
`

// Migrate creates tables and indices if they do not exist
func (db *DB) Migrate() error {
	_, err := db.conn.Exec(schema)
	return err
}

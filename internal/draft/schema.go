package draft

const schemaVersion = 1

const schemaSQL = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS drafts (
	id TEXT PRIMARY KEY,
	category TEXT NOT NULL,
	report_date TEXT NOT NULL,
	remote_id INTEGER NOT NULL DEFAULT 0,
	markup TEXT NOT NULL,
	images_json TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS drafts_by_category_date ON drafts(category, report_date);
`

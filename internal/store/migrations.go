package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS saved_attachments (
	id            TEXT PRIMARY KEY,
	filename      TEXT NOT NULL,
	path          TEXT NOT NULL,
	size_bytes    INTEGER NOT NULL DEFAULT 0,
	is_image      INTEGER NOT NULL DEFAULT 0,
	media_subtype TEXT NOT NULL DEFAULT 'file',
	digest        TEXT NOT NULL,
	message_ref   TEXT NOT NULL DEFAULT '',
	saved_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_saved_attachments_digest ON saved_attachments(digest);
CREATE INDEX IF NOT EXISTS idx_saved_attachments_saved_at ON saved_attachments(saved_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_saved_attachments_message_ref
	ON saved_attachments(message_ref);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}

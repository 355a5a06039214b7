package store

// schemaSQL is the complete schema for the orchestrator state store.
// Every statement is guarded with IF NOT EXISTS so re-running the
// bootstrap against an existing store is a no-op: no column migration,
// no data loss. Keep this to exactly the two orchestrator tables — the
// health probe asserts their presence.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS agents (
	id INTEGER PRIMARY KEY,
	name TEXT,
	status TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY,
	agent_name TEXT,
	task_description TEXT,
	status TEXT,
	result TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	completed_at TIMESTAMP
);
`

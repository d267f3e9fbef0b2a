package db

import "cricket-analyzer/internal/model"

// tableOrder is the order tables are created, cleared and loaded in
var tableOrder = []string{model.TableMatches, model.TablePlayers, model.TableInnings, model.TableDeliveries}

const runsTable = "ingest_runs"

// sqliteSchema is shared by SQLite and libSQL
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS matches (
		match_id TEXT PRIMARY KEY,
		format TEXT NOT NULL,
		city TEXT,
		venue TEXT,
		date DATE,
		match_type TEXT,
		season TEXT,
		team1 TEXT,
		team2 TEXT,
		toss_winner TEXT,
		toss_decision TEXT,
		winner TEXT,
		result_type TEXT NOT NULL,
		result_margin INTEGER,
		player_of_match TEXT,
		umpire1 TEXT,
		umpire2 TEXT,
		data_version TEXT,
		created TEXT,
		revision INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS players (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		match_id TEXT NOT NULL,
		team TEXT NOT NULL,
		player_name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS innings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		match_id TEXT NOT NULL,
		innings_number INTEGER NOT NULL,
		batting_team TEXT,
		total_overs INTEGER NOT NULL DEFAULT 0,
		total_runs INTEGER NOT NULL DEFAULT 0,
		total_wickets INTEGER NOT NULL DEFAULT 0,
		extras INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS deliveries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		match_id TEXT NOT NULL,
		innings_number INTEGER NOT NULL,
		over_number INTEGER,
		delivery_number INTEGER NOT NULL,
		batting_team TEXT,
		batter TEXT,
		non_striker TEXT,
		bowler TEXT,
		batter_runs INTEGER,
		extras_runs INTEGER,
		total_runs INTEGER,
		extras_type TEXT,
		wicket_type TEXT,
		player_dismissed TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS ingest_runs (
		run_id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		formats TEXT NOT NULL,
		matches INTEGER NOT NULL,
		players INTEGER NOT NULL,
		innings INTEGER NOT NULL,
		deliveries INTEGER NOT NULL
	)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS matches (
		match_id TEXT PRIMARY KEY,
		format TEXT NOT NULL,
		city TEXT,
		venue TEXT,
		date DATE,
		match_type TEXT,
		season TEXT,
		team1 TEXT,
		team2 TEXT,
		toss_winner TEXT,
		toss_decision TEXT,
		winner TEXT,
		result_type TEXT NOT NULL,
		result_margin BIGINT,
		player_of_match TEXT,
		umpire1 TEXT,
		umpire2 TEXT,
		data_version TEXT,
		created TEXT,
		revision BIGINT
	)`,
	`CREATE TABLE IF NOT EXISTS players (
		id BIGSERIAL PRIMARY KEY,
		match_id TEXT NOT NULL,
		team TEXT NOT NULL,
		player_name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS innings (
		id BIGSERIAL PRIMARY KEY,
		match_id TEXT NOT NULL,
		innings_number BIGINT NOT NULL,
		batting_team TEXT,
		total_overs BIGINT NOT NULL DEFAULT 0,
		total_runs BIGINT NOT NULL DEFAULT 0,
		total_wickets BIGINT NOT NULL DEFAULT 0,
		extras BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS deliveries (
		id BIGSERIAL PRIMARY KEY,
		match_id TEXT NOT NULL,
		innings_number BIGINT NOT NULL,
		over_number BIGINT,
		delivery_number BIGINT NOT NULL,
		batting_team TEXT,
		batter TEXT,
		non_striker TEXT,
		bowler TEXT,
		batter_runs BIGINT,
		extras_runs BIGINT,
		total_runs BIGINT,
		extras_type TEXT,
		wicket_type TEXT,
		player_dismissed TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS ingest_runs (
		run_id UUID PRIMARY KEY,
		started_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL,
		formats TEXT NOT NULL,
		matches BIGINT NOT NULL,
		players BIGINT NOT NULL,
		innings BIGINT NOT NULL,
		deliveries BIGINT NOT NULL
	)`,
}

// index is one secondary index; both dialects share the definitions
type index struct {
	name    string
	table   string
	columns string
}

var indexes = []index{
	{"idx_matches_format", model.TableMatches, "format"},
	{"idx_matches_date", model.TableMatches, "date"},
	{"idx_matches_venue", model.TableMatches, "venue"},
	{"idx_players_name", model.TablePlayers, "player_name"},
	{"idx_deliveries_match", model.TableDeliveries, "match_id"},
	{"idx_deliveries_batter", model.TableDeliveries, "batter"},
	{"idx_deliveries_bowler", model.TableDeliveries, "bowler"},
	{"idx_innings_match", model.TableInnings, "match_id"},
}

func (ix index) createSQL() string {
	return "CREATE INDEX IF NOT EXISTS " + ix.name + " ON " + ix.table + "(" + ix.columns + ")"
}

func (ix index) dropSQL() string {
	return "DROP INDEX IF EXISTS " + ix.name
}

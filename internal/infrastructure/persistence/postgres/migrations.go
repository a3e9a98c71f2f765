package postgres

// allMigrations returns the embedded schema, in apply order.
func allMigrations() []Migration {
	return []Migration{
		{Version: 1, Name: "create_activities", SQL: migration001Up},
		{Version: 2, Name: "create_aggregates", SQL: migration002Up},
		{Version: 3, Name: "create_achievements", SQL: migration003Up},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE ACTIVITIES
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create memberships and activities
-- Version: 001

-- Team rosters. Membership writes come from the identity system; this
-- service only reads them for authorization and leaderboard populations.
CREATE TABLE IF NOT EXISTS team_memberships (
    user_id UUID NOT NULL,
    team_id UUID NOT NULL,
    display_name VARCHAR(100) NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'active',
    joined_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY (user_id, team_id),
    CONSTRAINT valid_membership_status CHECK (status IN ('active', 'left', 'suspended'))
);

CREATE INDEX IF NOT EXISTS idx_memberships_team ON team_memberships(team_id) WHERE status = 'active';
CREATE INDEX IF NOT EXISTS idx_memberships_user ON team_memberships(user_id) WHERE status = 'active';

-- Logged activities. distance/duration/occurred_at are immutable after
-- insert so aggregate reversals stay exact.
CREATE TABLE IF NOT EXISTS activities (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL,
    distance_m DOUBLE PRECISION NOT NULL,
    duration_s BIGINT NOT NULL,
    occurred_at TIMESTAMP WITH TIME ZONE NOT NULL,
    note TEXT NOT NULL DEFAULT '',
    is_private BOOLEAN NOT NULL DEFAULT FALSE,
    source VARCHAR(20) NOT NULL DEFAULT 'manual',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT positive_distance CHECK (distance_m > 0),
    CONSTRAINT positive_duration CHECK (duration_s > 0),
    CONSTRAINT valid_source CHECK (source IN ('manual', 'import', 'tracker'))
);

CREATE INDEX IF NOT EXISTS idx_activities_user_occurred ON activities(user_id, occurred_at DESC);
CREATE INDEX IF NOT EXISTS idx_activities_occurred ON activities(occurred_at DESC);

-- Team attribution, ordered: position 0 is the primary team.
CREATE TABLE IF NOT EXISTS activity_teams (
    activity_id UUID NOT NULL REFERENCES activities(id) ON DELETE CASCADE,
    team_id UUID NOT NULL,
    position SMALLINT NOT NULL DEFAULT 0,

    PRIMARY KEY (activity_id, team_id)
);

CREATE INDEX IF NOT EXISTS idx_activity_teams_team ON activity_teams(team_id);
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE AGGREGATES
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create running aggregates
-- Version: 002

-- Per-user running totals, maintained by commutative increments.
CREATE TABLE IF NOT EXISTS user_stats (
    user_id UUID PRIMARY KEY,
    total_distance_m DOUBLE PRECISION NOT NULL DEFAULT 0,
    total_duration_s BIGINT NOT NULL DEFAULT 0,
    total_activities BIGINT NOT NULL DEFAULT 0,
    current_streak INTEGER NOT NULL DEFAULT 0,
    longest_streak INTEGER NOT NULL DEFAULT 0,
    last_activity_at TIMESTAMP WITH TIME ZONE,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

-- Team distance goals. At most one active goal per team.
CREATE TABLE IF NOT EXISTS team_goals (
    id UUID PRIMARY KEY,
    team_id UUID NOT NULL,
    name VARCHAR(200) NOT NULL,
    target_distance_m DOUBLE PRECISION NOT NULL,
    start_date TIMESTAMP WITH TIME ZONE NOT NULL,
    end_date TIMESTAMP WITH TIME ZONE,
    active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT positive_target CHECK (target_distance_m > 0)
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_team_goals_one_active
    ON team_goals(team_id) WHERE active;

-- Per-goal running totals, same increment discipline as user_stats.
CREATE TABLE IF NOT EXISTS team_goal_progress (
    goal_id UUID PRIMARY KEY REFERENCES team_goals(id) ON DELETE CASCADE,
    team_id UUID NOT NULL,
    total_distance_m DOUBLE PRECISION NOT NULL DEFAULT 0,
    total_duration_s BIGINT NOT NULL DEFAULT 0,
    total_activities BIGINT NOT NULL DEFAULT 0,
    last_activity_at TIMESTAMP WITH TIME ZONE,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_goal_progress_team ON team_goal_progress(team_id);
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: CREATE ACHIEVEMENTS
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create earned achievements
-- Version: 003

-- One row per earned achievement. The primary key is what makes awarding
-- at-most-once: concurrent detections collide on it and the loser's insert
-- is dropped as a duplicate.
CREATE TABLE IF NOT EXISTS user_achievements (
    user_id UUID NOT NULL,
    achievement_id VARCHAR(50) NOT NULL,
    earned_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    team_id UUID,
    activity_id UUID,

    PRIMARY KEY (user_id, achievement_id)
);

CREATE INDEX IF NOT EXISTS idx_user_achievements_user ON user_achievements(user_id, earned_at DESC);
`

package postgres

// SQL for the metrics table.
//
// Aggregation queries take the window bounds as $1 (inclusive start) and $2
// (exclusive end); a NULL bound leaves that side open. Days are UTC calendar days.

const (
	dayExpr = `(created_at AT TIME ZONE 'UTC')::date`

	windowPredicate = `($1::timestamptz IS NULL OR created_at >= $1::timestamptz)
		  AND ($2::timestamptz IS NULL OR created_at < $2::timestamptz)`
)

const (
	// queryInsertMetric appends one row. No conflict target: duplicates are kept.
	queryInsertMetric = `
		INSERT INTO metrics (created_at, metric_type, username, metrics)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	queryRegisterSummary = `
		SELECT
			` + dayExpr + ` AS day,
			COUNT(*) AS register_users,
			AVG((metrics->>'event_time')::float8) AS average_registration_time,
			AVG(CASE WHEN (metrics->>'success')::boolean THEN 1 ELSE 0 END) AS success_rate
		FROM metrics
		WHERE metric_type = 'register'
		  AND ` + windowPredicate + `
		GROUP BY day
		ORDER BY day ASC
	`

	queryRegisterWithProviderSummary = `
		SELECT
			` + dayExpr + ` AS day,
			COUNT(*) FILTER (
				WHERE metric_type = 'register' AND (metrics->>'success')::boolean
			) AS successful_registers,
			COUNT(*) FILTER (
				WHERE metric_type = 'register_with_provider'
			) AS successful_registers_with_provider
		FROM metrics
		WHERE metric_type IN ('register', 'register_with_provider')
		  AND ` + windowPredicate + `
		GROUP BY day
		ORDER BY day ASC
	`

	queryLoginSummary = `
		SELECT
			` + dayExpr + ` AS day,
			COUNT(*) AS login_users,
			COUNT(*) FILTER (WHERE (metrics->>'success')::boolean) AS successful_logins,
			COUNT(*) FILTER (WHERE NOT (metrics->>'success')::boolean) AS failed_login_attempts,
			AVG((metrics->>'event_time')::float8) AS average_login_time
		FROM metrics
		WHERE metric_type = 'login'
		  AND ` + windowPredicate + `
		GROUP BY day
		ORDER BY day ASC
	`

	queryLoginWithProviderSummary = `
		SELECT
			` + dayExpr + ` AS day,
			COUNT(*) FILTER (
				WHERE metric_type = 'login' AND (metrics->>'success')::boolean
			) AS successful_logins,
			COUNT(*) FILTER (
				WHERE metric_type = 'login_with_provider' AND (metrics->>'success')::boolean
			) AS successful_logins_with_provider
		FROM metrics
		WHERE metric_type IN ('login', 'login_with_provider')
		  AND ` + windowPredicate + `
		GROUP BY day
		ORDER BY day ASC
	`

	queryBlockedSummary = `
		SELECT
			` + dayExpr + ` AS day,
			COUNT(*) AS blocked_users
		FROM metrics
		WHERE metric_type = 'blocked'
		  AND ` + windowPredicate + `
		GROUP BY day
		ORDER BY day ASC
	`

	queryUserDailyCounts = `
		SELECT
			` + dayExpr + ` AS day,
			COUNT(*) AS amount
		FROM metrics
		WHERE metric_type = $3
		  AND username = $4
		  AND ` + windowPredicate + `
		GROUP BY day
		ORDER BY day ASC
	`

	queryDailyCounts = `
		SELECT
			` + dayExpr + ` AS day,
			COUNT(*) AS amount
		FROM metrics
		WHERE metric_type = $3
		  AND ` + windowPredicate + `
		GROUP BY day
		ORDER BY day ASC
	`

	queryCountryCounts = `
		SELECT
			metrics->>'country' AS country,
			COUNT(*) AS amount
		FROM metrics
		WHERE metric_type = 'location'
		  AND metrics->>'country' IS NOT NULL
		  AND ` + windowPredicate + `
		GROUP BY country
		ORDER BY amount ASC, country ASC
	`

	// queryFollowBalance adds the amount of every follow and subtracts one per unfollow.
	queryFollowBalance = `
		SELECT COALESCE(SUM(
			CASE WHEN (metrics->>'followed')::boolean
				THEN (metrics->>'amount')::numeric
				ELSE -1
			END
		), 0) AS total
		FROM metrics
		WHERE metric_type = 'follow'
		  AND username = $1
	`

	queryDailyFollows = `
		SELECT
			` + dayExpr + ` AS day,
			COALESCE(SUM((metrics->>'amount')::numeric) FILTER (
				WHERE (metrics->>'followed')::boolean
			), 0) AS amount
		FROM metrics
		WHERE metric_type = 'follow'
		  AND username = $3
		  AND ` + windowPredicate + `
		GROUP BY day
		ORDER BY day ASC
	`

	queryTopHashtags = `
		SELECT
			metrics->>'hashtag' AS hashtag,
			COUNT(*) AS uses
		FROM metrics
		WHERE metric_type = 'hashtag'
		  AND ` + windowPredicate + `
		GROUP BY hashtag
		ORDER BY uses DESC, hashtag ASC
		LIMIT $3
	`

	queryDailyHashtags = `
		SELECT
			` + dayExpr + ` AS day,
			metrics->>'hashtag' AS hashtag,
			COUNT(*) AS uses
		FROM metrics
		WHERE metric_type = 'hashtag'
		  AND ` + windowPredicate + `
		GROUP BY day, hashtag
		ORDER BY day ASC, hashtag ASC
	`

	// querySchemaExists backs the startup check that migrations ran.
	querySchemaExists = `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_name = 'metrics'
		)
	`
)

package sqlite

const (
	upsertTranscriptQuery = `
        INSERT INTO transcripts (video_id, text, fetched_at)
        VALUES (?, ?, ?)
        ON CONFLICT(video_id) DO UPDATE SET
            text = excluded.text,
            fetched_at = excluded.fetched_at
    `

	getTranscriptQuery = `
        SELECT video_id, text, fetched_at
        FROM transcripts WHERE video_id = ?
    `
)

package postgres

const (
	QueryGetUserByLogin = `
		SELECT login, image_url
		FROM users
		WHERE login = $1;
	`
	QueryGetVideoByIDAndStatus = `
		SELECT id, title, video_path
		FROM videos
		WHERE id = $1 AND status = $2;
	`
	QueryVideoHasStatus = `
		SELECT EXISTS (
			SELECT 1 FROM videos
			WHERE id = $1 AND status = $2 AND video_path <> ''
		);
	`
)

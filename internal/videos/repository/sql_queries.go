package repository

const (
	videoColumns = `id, user_id, title, description, category, video_url, thumbnail_url, duration, file_size, status, views, likes, created_at, updated_at`

	createVideoQuery = `INSERT INTO videos (user_id, title, description, category, video_url, thumbnail_url, duration, file_size, status)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING ` + videoColumns

	getVideoByIDQuery = `SELECT ` + videoColumns + ` FROM videos WHERE id = $1`

	getVideoByAssetURLQuery = `SELECT ` + videoColumns + ` FROM videos
						WHERE video_url = $1 OR thumbnail_url = $1
						ORDER BY id LIMIT 1`

	updateVideoQuery = `UPDATE videos
						SET title = COALESCE($1, title),
						    description = COALESCE($2, description),
						    category = COALESCE($3, category),
						    status = COALESCE($4, status),
						    updated_at = NOW()
						WHERE id = $5 RETURNING ` + videoColumns

	deleteVideoQuery     = `DELETE FROM videos WHERE id = $1`
	incrementViewsQuery  = `UPDATE videos SET views = views + 1 WHERE id = $1`
	videoExistsQuery     = `SELECT EXISTS (SELECT 1 FROM videos WHERE id = $1)`
	insertLikeQuery      = `INSERT INTO video_likes (user_id, video_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	deleteLikeQuery      = `DELETE FROM video_likes WHERE user_id = $1 AND video_id = $2`
	incrementLikesQuery  = `UPDATE videos SET likes = likes + 1 WHERE id = $1`
	decrementLikesQuery  = `UPDATE videos SET likes = GREATEST(likes - 1, 0) WHERE id = $1`
	listVideosSelect     = `SELECT ` + videoColumns + ` FROM videos`
	countVideosSelect    = `SELECT COUNT(id) FROM videos`
	searchVideosFragment = `(title ILIKE '%%' || $%d || '%%' OR description ILIKE '%%' || $%d || '%%')`
)

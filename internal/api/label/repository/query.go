package labelRepository

const (
	queryUpsertLabel = `
		INSERT INTO labels (image_filename, image_path, boxes, box_count, landmark_count, updated_at)
		VALUES (:image_filename, :image_path, :boxes, :box_count, :landmark_count, :updated_at)
		ON CONFLICT (image_filename) DO UPDATE SET
			image_path = excluded.image_path,
			boxes = excluded.boxes,
			box_count = excluded.box_count,
			landmark_count = excluded.landmark_count,
			updated_at = excluded.updated_at
	`

	queryGetLabel = `
		SELECT image_filename, image_path, boxes, box_count, landmark_count, updated_at
		FROM labels
		WHERE image_filename = :image_filename
	`

	queryListLabels = `
		SELECT image_filename, image_path, boxes, box_count, landmark_count, updated_at
		FROM labels
		ORDER BY updated_at DESC
	`
)

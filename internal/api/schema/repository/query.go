package schemaRepository

const (
	queryCreateSchema = `
		INSERT INTO landmark_schemas (id, name, description, landmarks, created_at, updated_at)
		VALUES (:id, :name, :description, :landmarks, :created_at, :updated_at)
	`

	queryGetSchemaByID = `
		SELECT id, name, description, landmarks, created_at, updated_at
		FROM landmark_schemas
		WHERE id = :id
	`

	queryListSchemas = `
		SELECT id, name, description, landmarks, created_at, updated_at
		FROM landmark_schemas
		ORDER BY created_at ASC
	`

	queryUpdateSchema = `
		UPDATE landmark_schemas
		SET name = :name, description = :description, landmarks = :landmarks, updated_at = :updated_at
		WHERE id = :id
	`

	queryDeleteSchema = `
		DELETE FROM landmark_schemas
		WHERE id = :id
	`
)

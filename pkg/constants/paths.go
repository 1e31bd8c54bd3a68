package constants

// Пути сервисных и relay-эндпоинтов (REST-группы — в router).
const (
	PathHealth      = "/health"
	PathReady       = "/ready"
	PathWSTranslate = "/ws/translate/:room_id/:participant_id"
)

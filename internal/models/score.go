package models

// MovieScore es la fila de puntuaciones de (usuario, película). Hay
// exactamente una por par una vez inicializados los scores del usuario.
// Todos los campos están en [0.0, 1.0]; Total se recalcula siempre a partir
// de los cuatro componentes, nunca se edita directamente.
type MovieScore struct {
	UserID           int     `json:"userId" bson:"userId"`
	MovieID          int     `json:"movieId" bson:"movieId"`
	SurveyBased      float64 `json:"surveyBased" bson:"surveyBased"`
	UserBased        float64 `json:"userBased" bson:"userBased"`
	ItemBased        float64 `json:"itemBased" bson:"itemBased"`
	ExplorationBased float64 `json:"explorationBased" bson:"explorationBased"`
	Total            float64 `json:"total" bson:"total"`
}

package models

// SurveyAnswer es la respuesta tri-estado de la encuesta de preferencias
// para un género: sin responder, incluir o excluir.
type SurveyAnswer int

const (
	SurveyUnset SurveyAnswer = iota
	SurveyInclude
	SurveyExclude
)

func (a SurveyAnswer) String() string {
	switch a {
	case SurveyInclude:
		return "include"
	case SurveyExclude:
		return "exclude"
	default:
		return "unset"
	}
}

// Counters guarda los contadores de valoraciones de un (usuario, género) o
// (usuario, década). Invariante: Likes+Dislikes <= Seen, todos >= 0.
type Counters struct {
	Seen     int `json:"seen" bson:"seen"`
	Likes    int `json:"likes" bson:"likes"`
	Dislikes int `json:"dislikes" bson:"dislikes"`
}

// IncrementSeen suma delta (puede ser negativo) y devuelve (anterior, nuevo).
func (c *Counters) IncrementSeen(delta int) (int, int) {
	prev := c.Seen
	c.Seen += delta
	return prev, c.Seen
}

func (c *Counters) IncrementLikes(delta int) (int, int) {
	prev := c.Likes
	c.Likes += delta
	return prev, c.Likes
}

func (c *Counters) IncrementDislikes(delta int) (int, int) {
	prev := c.Dislikes
	c.Dislikes += delta
	return prev, c.Dislikes
}

type GenrePreference struct {
	UserID   int          `json:"userId" bson:"userId"`
	Genre    string       `json:"genre" bson:"genre"`
	Survey   SurveyAnswer `json:"survey" bson:"survey"`
	Counters Counters     `json:"counters" bson:"counters"`
}

// DecadePreference no tiene campo de encuesta: las décadas no son
// seleccionables en la encuesta.
type DecadePreference struct {
	UserID   int      `json:"userId" bson:"userId"`
	Decade   int      `json:"decade" bson:"decade"`
	Counters Counters `json:"counters" bson:"counters"`
}

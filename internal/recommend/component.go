package recommend

import "strings"

// Component identifica una columna de score recalculable.
type Component uint8

const (
	CompSurvey Component = 1 << iota
	CompUserBased
	CompItemBased
	CompExploration
	CompHybrid
)

func (c Component) String() string {
	switch c {
	case CompSurvey:
		return "survey-based"
	case CompUserBased:
		return "user-based"
	case CompItemBased:
		return "item-based"
	case CompExploration:
		return "explorative"
	case CompHybrid:
		return "hybrid"
	default:
		return "unknown"
	}
}

// ComponentSet es el "dirty set" de un usuario: los componentes que quedaron
// obsoletos desde el último recálculo.
type ComponentSet uint8

// AllComponents marca las cinco columnas.
const AllComponents = ComponentSet(CompSurvey | CompUserBased | CompItemBased | CompExploration | CompHybrid)

// AfterRating es la transición para valorar, des-ignorar, o ignorar una
// película que tenía valoración.
const AfterRating = ComponentSet(CompUserBased | CompItemBased | CompExploration | CompHybrid)

// AfterSurvey es la transición para el envío de la encuesta.
const AfterSurvey = ComponentSet(CompSurvey | CompHybrid)

func (s ComponentSet) Has(c Component) bool { return s&ComponentSet(c) != 0 }

func (s ComponentSet) Add(c Component) ComponentSet { return s | ComponentSet(c) }

func (s ComponentSet) Remove(c Component) ComponentSet { return s &^ ComponentSet(c) }

func (s ComponentSet) Union(o ComponentSet) ComponentSet { return s | o }

func (s ComponentSet) Empty() bool { return s == 0 }

func components() []Component {
	return []Component{CompSurvey, CompUserBased, CompItemBased, CompExploration, CompHybrid}
}

// Strings devuelve los nombres de los componentes marcados, en orden fijo.
func (s ComponentSet) Strings() []string {
	out := []string{}
	for _, c := range components() {
		if s.Has(c) {
			out = append(out, c.String())
		}
	}
	return out
}

func (s ComponentSet) String() string {
	return strings.Join(s.Strings(), ",")
}

// ParseComponentSet interpreta una lista separada por comas (tal como la
// devuelven las operaciones de registro por la API). Los nombres
// desconocidos se ignoran.
func ParseComponentSet(raw string) ComponentSet {
	var set ComponentSet
	for _, part := range strings.Split(raw, ",") {
		switch strings.TrimSpace(part) {
		case "survey-based":
			set = set.Add(CompSurvey)
		case "user-based":
			set = set.Add(CompUserBased)
		case "item-based":
			set = set.Add(CompItemBased)
		case "explorative":
			set = set.Add(CompExploration)
		case "hybrid":
			set = set.Add(CompHybrid)
		}
	}
	return set
}

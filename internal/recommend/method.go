package recommend

import "fmt"

// Method es el criterio de ordenación pedido para una lista de
// recomendaciones. Es un enum cerrado: los valores inválidos solo pueden
// entrar por ParseMethod, que los rechaza antes de cualquier cálculo.
type Method int

const (
	MethodSurvey Method = iota
	MethodUserBased
	MethodItemBased
	MethodExploration
	MethodHybrid
)

func (m Method) String() string {
	switch m {
	case MethodSurvey:
		return "survey-based"
	case MethodUserBased:
		return "user-based"
	case MethodItemBased:
		return "item-based"
	case MethodExploration:
		return "explorative"
	case MethodHybrid:
		return "hybrid"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod valida el nombre recibido por la API.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "survey-based":
		return MethodSurvey, nil
	case "user-based":
		return MethodUserBased, nil
	case "item-based":
		return MethodItemBased, nil
	case "explorative":
		return MethodExploration, nil
	case "hybrid", "":
		return MethodHybrid, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidMethod, s)
	}
}

// Component devuelve la columna de score por la que ordena el método.
func (m Method) Component() Component {
	switch m {
	case MethodSurvey:
		return CompSurvey
	case MethodUserBased:
		return CompUserBased
	case MethodItemBased:
		return CompItemBased
	case MethodExploration:
		return CompExploration
	default:
		return CompHybrid
	}
}

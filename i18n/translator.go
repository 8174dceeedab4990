package i18n

// Translator retrieves localized messages for violation codes.
// data provides optional metadata to embed in the message (for example,
// "field" or "max").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "es":
		switch code {
		case "missing_field":
			return "falta un campo obligatorio"
		case "type_mismatch":
			return "tipo no coincide"
		case "out_of_range":
			return "fuera de rango"
		case "too_long":
			return "demasiado largo"
		case "bad_format":
			return "formato incorrecto"
		case "hook_violation":
			return "rechazado por un validador"
		case "computation_error":
			return "error de cálculo"
		case "filter_conflict":
			return "filtros en conflicto"
		case "unknown_key":
			return "clave desconocida"
		case "invalid_schema":
			return "definición de esquema inválida"
		case "parse_error":
			return "error de análisis"
		}
	default: // "en"
		switch code {
		case "missing_field":
			return "missing required field"
		case "type_mismatch":
			return "type mismatch"
		case "out_of_range":
			return "out of range"
		case "too_long":
			return "too long"
		case "bad_format":
			return "bad format"
		case "hook_violation":
			return "rejected by validator"
		case "computation_error":
			return "computation failed"
		case "filter_conflict":
			return "include and exclude are mutually exclusive"
		case "unknown_key":
			return "unknown key"
		case "invalid_schema":
			return "invalid schema definition"
		case "parse_error":
			return "parse error"
		}
	}
	return code
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"es").
func SetLanguage(lang string) {
	if lang != "es" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }

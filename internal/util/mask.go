package util

// Mask acorta una credencial opaca para logs: primeros 4 caracteres y un
// marcador. Nunca se loguea un token completo, ni siquiera en debug.
func Mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "…"
}

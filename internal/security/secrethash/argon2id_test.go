package secrethash

import (
	"strings"
	"testing"
)

// Params chicos para que el test no queme memoria.
var testParams = Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, KeyLen: 32}

func TestHashVerify(t *testing.T) {
	phc, err := Hash(testParams, "super-secreto")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(phc, "$argon2id$v=19$") {
		t.Fatalf("formato PHC inesperado: %s", phc)
	}
	if !Verify("super-secreto", phc) {
		t.Fatal("el secreto correcto debe verificar")
	}
	if Verify("otro-secreto", phc) {
		t.Fatal("un secreto incorrecto no debe verificar")
	}
}

func TestHash_SaltUnico(t *testing.T) {
	a, _ := Hash(testParams, "x")
	b, _ := Hash(testParams, "x")
	if a == b {
		t.Fatal("dos hashes del mismo secreto deben diferir (salt aleatorio)")
	}
}

func TestHash_EmptySecret(t *testing.T) {
	if _, err := Hash(testParams, ""); err == nil {
		t.Fatal("secreto vacío debe fallar")
	}
}

func TestVerify_Malformados(t *testing.T) {
	bad := []string{
		"",
		"no-es-phc",
		"$argon2i$v=19$m=8,t=1,p=1$c2FsdA$ZGs",      // variante equivocada
		"$argon2id$v=18$m=8,t=1,p=1$c2FsdA$ZGs",     // versión equivocada
		"$argon2id$v=19$m=8,t=1,p=1$!!notb64!!$ZGs", // salt corrupto
		"$argon2id$v=19$m=8,t=1,p=1$c2FsdA",         // faltan segmentos
	}
	for _, phc := range bad {
		if Verify("x", phc) {
			t.Fatalf("PHC malformado no debe verificar: %q", phc)
		}
	}
}

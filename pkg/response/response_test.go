package response

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestErrorWithCodeJSON(t *testing.T) {
	raw, err := json.Marshal(ErrorWithCode(http.StatusConflict, "ALREADY_SUBMITTED", "report already submitted"))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"status":"error","status_code":409,"error":"report already submitted","code":"ALREADY_SUBMITTED"}`
	if string(raw) != want {
		t.Errorf("json = %s, want %s", raw, want)
	}
}

func TestSuccessOmitsErrorFields(t *testing.T) {
	raw, err := json.Marshal(Success(http.StatusOK, []int{1}))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"status":"success","status_code":200,"data":[1]}`
	if string(raw) != want {
		t.Errorf("json = %s, want %s", raw, want)
	}
}

package output

import "testing"

func TestContract_ValidatesWellFormedPayload(t *testing.T) {
	c, err := NewContract("")
	if err != nil {
		t.Fatalf("NewContract: %v", err)
	}
	tu := "calc"
	p := Payload{
		Answer:     "结果为46",
		Citations:  []string{"ref"},
		ToolUsed:   &tu,
		ToolResult: map[string]interface{}{"result": 46.0},
	}
	ok, err := c.Validate(p, "ref")
	if !ok || err != nil {
		t.Fatalf("expected valid payload, got ok=%v err=%v", ok, err)
	}
}

func TestContract_RejectsMissingCitation(t *testing.T) {
	c, err := NewContract("")
	if err != nil {
		t.Fatalf("NewContract: %v", err)
	}
	tu := "calc"
	p := Payload{
		Answer:     "结果为46",
		Citations:  []string{"other"},
		ToolUsed:   &tu,
		ToolResult: map[string]interface{}{"result": 46.0},
	}
	ok, err := c.Validate(p, "ref")
	if ok || err == nil {
		t.Fatalf("expected rejection when citation is absent")
	}
}

func TestContract_RejectsEmptyCitationsArray(t *testing.T) {
	c, err := NewContract("")
	if err != nil {
		t.Fatalf("NewContract: %v", err)
	}
	tu := "calc"
	p := Payload{
		Answer:     "no citation",
		Citations:  []string{},
		ToolUsed:   &tu,
		ToolResult: map[string]interface{}{"result": 1.0},
	}
	ok, _ := c.Validate(p, "")
	if ok {
		t.Fatalf("expected schema to reject empty citations array (minItems: 1)")
	}
}

func TestContract_NormalizeDelegatesToNormalizeToolResult(t *testing.T) {
	c, err := NewContract("")
	if err != nil {
		t.Fatalf("NewContract: %v", err)
	}
	got := c.Normalize("calc", 46.0)
	m, ok := got.(map[string]interface{})
	if !ok || m["result"] != 46.0 {
		t.Fatalf("unexpected normalize result: %#v", got)
	}
}

package scan

import (
	"testing"
)

func TestClassifyNoise(t *testing.T) {
	c := DefaultClassifier()

	tests := []struct {
		name string
		line string
	}{
		{"empty", ""},
		{"whitespace only", "   \t  "},
		{"boot chatter clk_drv", "clk_drv:0x00,q_drv:0x00,d_drv:0x00"},
		{"boot chatter SPIWP", "SPIWP:0xee"},
		{"boot chatter load", "load:0x3fff0030,len:4888"},
		{"boot chatter with leading float", "10.0,clk_drv:,mode:"},
		{"non-numeric field", "80,abc,0,0"},
		{"one field", "S"},
		{"two fields", "80,90"},
		{"six fields", "1,2,3,4,5,6"},
		{"random text", "hello world"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Classify(tt.line)
			if res.Class != ClassNoise {
				t.Errorf("Classify(%q).Class = %v, want ClassNoise", tt.line, res.Class)
			}
		})
	}
}

func TestClassifyData(t *testing.T) {
	c := DefaultClassifier()

	tests := []struct {
		name   string
		line   string
		schema SchemaID
		fields []float64
	}{
		{"polar", "80,90,0,50", SchemaPolar, []float64{80, 90, 0, 50}},
		{"cylindrical", "10,20,30,5,45", SchemaCylindrical, []float64{10, 20, 30, 5, 45}},
		{"cartesian", "1.5,-2.5,3", SchemaCartesian, []float64{1.5, -2.5, 3}},
		{"spaces around fields", " 80 , 90 , 0 , 50 ", SchemaPolar, []float64{80, 90, 0, 50}},
		{"negative values pass through", "-80,-90,0,-50", SchemaPolar, []float64{-80, -90, 0, -50}},
		{"scientific notation", "8e1,9e1,0,5e1", SchemaPolar, []float64{80, 90, 0, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Classify(tt.line)
			if res.Class != ClassData {
				t.Fatalf("Classify(%q).Class = %v, want ClassData", tt.line, res.Class)
			}
			if res.Schema != tt.schema {
				t.Errorf("schema = %v, want %v", res.Schema, tt.schema)
			}
			if len(res.Fields) != len(tt.fields) {
				t.Fatalf("got %d fields, want %d", len(res.Fields), len(tt.fields))
			}
			for i, want := range tt.fields {
				if res.Fields[i] != want {
					t.Errorf("field %d = %v, want %v", i, res.Fields[i], want)
				}
			}
		})
	}
}

func TestClassifyStatus(t *testing.T) {
	c := DefaultClassifier()

	tests := []struct {
		name string
		line string
		kind StatusKind
	}{
		{"initialized", "Scanner initialized", StatusInfo},
		{"ready", "TOF sensor ready", StatusInfo},
		{"configured", "Stepper configured, 200 steps/rev", StatusInfo},
		{"detected", "VL53L0X detected", StatusInfo},
		{"scan started", "Starting full 3D scan", StatusScanStarted},
		{"scan complete", "Scan complete!", StatusScanComplete},
		{"failed", "Failed to boot VL53L0X", StatusDeviceError},
		{"error", "sensor read error", StatusDeviceError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Classify(tt.line)
			if res.Class != ClassStatus {
				t.Fatalf("Classify(%q).Class = %v, want ClassStatus", tt.line, res.Class)
			}
			if res.Status.Kind != tt.kind {
				t.Errorf("kind = %v, want %v", res.Status.Kind, tt.kind)
			}
			if res.Status.Message != tt.line {
				t.Errorf("message = %q, want %q", res.Status.Message, tt.line)
			}
		})
	}
}

// Banner lines win over numeric parsing even when they embed commas and
// numbers that would otherwise look like a data row.
func TestClassifyStatusBeforeNumericParsing(t *testing.T) {
	c := DefaultClassifier()

	res := c.Classify("Scan complete! points: 1, 2, 3")
	if res.Class != ClassStatus {
		t.Fatalf("Class = %v, want ClassStatus", res.Class)
	}
	if res.Status.Kind != StatusScanComplete {
		t.Errorf("kind = %v, want StatusScanComplete", res.Status.Kind)
	}
}

func TestClassifyStatusVerticalAngle(t *testing.T) {
	c := DefaultClassifier()

	res := c.Classify("Scanning at vertical angle 45")
	if res.Class != ClassStatus {
		t.Fatalf("Class = %v, want ClassStatus", res.Class)
	}
	if res.Status.VerticalAngle == nil {
		t.Fatal("VerticalAngle = nil, want 45")
	}
	if *res.Status.VerticalAngle != 45 {
		t.Errorf("VerticalAngle = %v, want 45", *res.Status.VerticalAngle)
	}

	res = c.Classify("Scan complete at vertical angle 22.5°")
	if res.Status.Kind != StatusScanComplete {
		t.Fatalf("kind = %v, want StatusScanComplete", res.Status.Kind)
	}
	if res.Status.VerticalAngle == nil || *res.Status.VerticalAngle != 22.5 {
		t.Errorf("VerticalAngle = %v, want 22.5", res.Status.VerticalAngle)
	}

	res = c.Classify("Scan complete!")
	if res.Status.VerticalAngle != nil {
		t.Errorf("VerticalAngle = %v, want nil", *res.Status.VerticalAngle)
	}
}

func TestClassifySchemaRestriction(t *testing.T) {
	c := NewClassifier(nil, nil, SchemaPolar)

	if res := c.Classify("80,90,0,50"); res.Class != ClassData {
		t.Errorf("polar line under polar-only classifier: Class = %v, want ClassData", res.Class)
	}
	if res := c.Classify("10,20,30,5,45"); res.Class != ClassNoise {
		t.Errorf("cylindrical line under polar-only classifier: Class = %v, want ClassNoise", res.Class)
	}
}

// Classification must be a pure function of line content: repeated calls with
// interleaved garbage yield identical results.
func TestClassifyIsStateless(t *testing.T) {
	c := DefaultClassifier()

	first := c.Classify("80,90,0,50")
	c.Classify("garbage")
	c.Classify("Scan complete!")
	second := c.Classify("80,90,0,50")

	if first.Class != second.Class || first.Schema != second.Schema {
		t.Error("classification changed between identical calls")
	}
	for i := range first.Fields {
		if first.Fields[i] != second.Fields[i] {
			t.Errorf("field %d differs between identical calls", i)
		}
	}
}

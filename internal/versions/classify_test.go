package versions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected Class
	}{
		{
			name:     "tagged release",
			input:    "gluon-v2023.2.1",
			expected: Class{Version: "gluon-v2023.2.1", Base: "gluon-v2023.2.1", VType: VTypeGluonBase},
		},
		{
			name:     "release without patch level",
			input:    "gluon-v2024.1",
			expected: Class{Version: "gluon-v2024.1", Base: "gluon-v2024.1", VType: VTypeGluonBase},
		},
		{
			name:     "release with build suffix",
			input:    "gluon-v2022.1.4-7",
			expected: Class{Version: "gluon-v2022.1.4-7", Base: "gluon-v2022.1.4", VType: VTypeGluonBase},
		},
		{
			name:     "release with trailing text",
			input:    "gluon-v2021.1.2-3+ffmuc-beta",
			expected: Class{Version: "gluon-v2021.1.2-3", Base: "gluon-v2021.1.2", VType: VTypeGluonBase},
		},
		{
			name:     "release with text after minor",
			input:    "gluon-v2020.2.x-custom",
			expected: Class{Version: "gluon-v2020.2", Base: "gluon-v2020.2", VType: VTypeGluonBase},
		},
		{
			name:     "gluon unknown",
			input:    "gluon-unknown",
			expected: Class{Version: "gluon-unknown", Base: "gluon-unknown", VType: VTypeGluonUnknown},
		},
		{
			name:     "gluon unknown with suffix is custom",
			input:    "gluon-unknown-2",
			expected: Class{Version: "gluon-unknown-2", Base: "gluon-unknown-2", VType: VTypeGluonCustom},
		},
		{
			name:     "short commit id",
			input:    "gluon-1a2b3c4",
			expected: Class{Version: "gluon-1a2b3c4", Base: "gluon-1a2b3c4", VType: VTypeGluonCommitID},
		},
		{
			name:     "full commit id",
			input:    "gluon-0123456789abcdef0123456789abcdef01234567",
			expected: Class{Version: "gluon-0123456789abcdef0123456789abcdef01234567", Base: "gluon-0123456789abcdef0123456789abcdef01234567", VType: VTypeGluonCommitID},
		},
		{
			name:     "six hex digits is custom",
			input:    "gluon-1a2b3c",
			expected: Class{Version: "gluon-1a2b3c", Base: "gluon-1a2b3c", VType: VTypeGluonCustom},
		},
		{
			name:     "uppercase hex is custom",
			input:    "gluon-ABCDEF1",
			expected: Class{Version: "gluon-ABCDEF1", Base: "gluon-ABCDEF1", VType: VTypeGluonCustom},
		},
		{
			name:     "custom branch",
			input:    "gluon-master-20240101",
			expected: Class{Version: "gluon-master-20240101", Base: "gluon-master-20240101", VType: VTypeGluonCustom},
		},
		{
			name:     "bare prefix is custom",
			input:    "gluon-",
			expected: Class{Version: "gluon-", Base: "gluon-", VType: VTypeGluonCustom},
		},
		{
			name:     "empty is undefined",
			input:    "",
			expected: Class{Version: Undefined, Base: Undefined, VType: VTypeUndefined},
		},
		{
			name:     "openwrt is foreign",
			input:    "OpenWrt 23.05.2",
			expected: Class{Version: "OpenWrt 23.05.2", Base: "OpenWrt 23.05.2", VType: VTypeForeign},
		},
		{
			name:     "gluon without dash is foreign",
			input:    "gluon",
			expected: Class{Version: "gluon", Base: "gluon", VType: VTypeForeign},
		},
		{
			name:     "prefix must be at start",
			input:    "my-gluon-v2023.1",
			expected: Class{Version: "my-gluon-v2023.1", Base: "my-gluon-v2023.1", VType: VTypeForeign},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, Classify(tt.input))
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	t.Parallel()

	inputs := []string{"gluon-v2024.1", "gluon-unknown", "gluon-deadbeef", "gluon-x", "", "lede"}
	for _, in := range inputs {
		assert.Equal(t, Classify(in), Classify(in), "input %q", in)
	}
}

func TestVType_IsGluon(t *testing.T) {
	t.Parallel()

	recognized := []VType{VTypeGluonBase, VTypeGluonUnknown, VTypeGluonCommitID, VTypeGluonCustom}
	for _, vt := range recognized {
		assert.True(t, vt.IsGluon(), vt)
	}

	aliens := []VType{VTypeUndefined, VTypeForeign}
	for _, vt := range aliens {
		assert.False(t, vt.IsGluon(), vt)
	}

	assert.True(t, Classify("gluon-v2019.1").IsGluon())
	assert.False(t, Classify("").IsGluon())
}

package limits

import (
	"errors"
	"testing"
)

// TestValidateMessageSize tests the generic validation function
func TestValidateMessageSize(t *testing.T) {
	tests := []struct {
		name    string
		message []byte
		maxSize int
		wantErr error
	}{
		{
			name:    "empty message",
			message: []byte{},
			maxSize: 10,
			wantErr: ErrMessageEmpty,
		},
		{
			name:    "nil message",
			message: nil,
			maxSize: 10,
			wantErr: ErrMessageEmpty,
		},
		{
			name:    "exactly at limit",
			message: make([]byte, 10),
			maxSize: 10,
			wantErr: nil,
		},
		{
			name:    "over limit",
			message: make([]byte, 11),
			maxSize: 10,
			wantErr: ErrMessageTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMessageSize(tt.message, tt.maxSize)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateMessageSize() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestValidateFrame checks the frame cap boundary
func TestValidateFrame(t *testing.T) {
	if err := ValidateFrame(make([]byte, MaxFrameSize)); err != nil {
		t.Errorf("ValidateFrame(max) = %v, want nil", err)
	}
	if err := ValidateFrame(make([]byte, MaxFrameSize+1)); !errors.Is(err, ErrMessageTooLarge) {
		t.Errorf("ValidateFrame(max+1) = %v, want ErrMessageTooLarge", err)
	}
}

func TestValidatePort(t *testing.T) {
	tests := []struct {
		port    int
		wantErr bool
	}{
		{0, true},
		{-1, true},
		{1, false},
		{9000, false},
		{65535, false},
		{65536, true},
	}

	for _, tt := range tests {
		err := ValidatePort(tt.port)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePort(%d) error = %v, wantErr %v", tt.port, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidPort) {
			t.Errorf("ValidatePort(%d) error = %v, want ErrInvalidPort", tt.port, err)
		}
	}
}

func TestValidateCapacity(t *testing.T) {
	if err := ValidateCapacity(DefaultCapacity); err != nil {
		t.Errorf("ValidateCapacity(default) = %v", err)
	}
	if err := ValidateCapacity(0); !errors.Is(err, ErrInvalidCapacity) {
		t.Errorf("ValidateCapacity(0) = %v, want ErrInvalidCapacity", err)
	}
}

// TestConstantConsistency verifies internal consistency of the size constants
func TestConstantConsistency(t *testing.T) {
	if MaxFrameSize < ReceiveBufferSize {
		t.Errorf("MaxFrameSize (%d) should be >= ReceiveBufferSize (%d)", MaxFrameSize, ReceiveBufferSize)
	}
	if FrameHeaderSize != 4 {
		t.Errorf("FrameHeaderSize = %d, want 4", FrameHeaderSize)
	}
}

package types

// StringPtr 字符串指针
func StringPtr(s string) *string { return &s }

// BoolPtr 布尔指针
func BoolPtr(b bool) *bool { return &b }

// IntPtr 整数指针
func IntPtr(n int) *int { return &n }

// Uint32Ptr uint32 指针
func Uint32Ptr(n uint32) *uint32 { return &n }

// Uint64Ptr uint64 指针
func Uint64Ptr(n uint64) *uint64 { return &n }

// MomentPtr 时间戳指针
func MomentPtr(m Moment) *Moment { return &m }

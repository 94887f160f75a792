package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/glesirok/treemapper/pkg/path"
)

// Kind 错误类别
type Kind string

const (
	KindParse            Kind = "parse"
	KindDepthMismatch    Kind = "depth_mismatch"
	KindUnresolvedParent Kind = "unresolved_parent"
	KindNotAList         Kind = "not_a_list"
	KindUnableToMap      Kind = "unable_to_map"
	KindEmptyInput       Kind = "empty_input"
	KindDepthLimit       Kind = "depth_limit"
	KindUnknown          Kind = "unknown"
)

var (
	ErrDepthMismatch    = errors.New("depth mismatch")
	ErrUnresolvedParent = errors.New("unresolved parent")
	ErrNotAList         = errors.New("not a list")
	ErrUnableToMap      = errors.New("unable to map")
	ErrEmptyInput       = errors.New("empty input")
	ErrDepthLimit       = errors.New("depth limit exceeded")
)

// Detailer 可输出完整上下文（映射表、数据树）的错误
type Detailer interface {
	Details() string
}

var dumper = spew.ConfigState{
	Indent:                  "  ",
	SortKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// DepthMismatchError 一条映射两侧的通配符个数不一致
type DepthMismatchError struct {
	Source           string
	Destination      string
	SourceDepth      int
	DestinationDepth int
	Map              Map
}

func (e *DepthMismatchError) Error() string {
	return fmt.Sprintf("depth mismatch: '%s' (depth %d) -> '%s' (depth %d)",
		e.Source, e.SourceDepth, e.Destination, e.DestinationDepth)
}

func (e *DepthMismatchError) Is(target error) bool { return target == ErrDepthMismatch }

func (e *DepthMismatchError) Kind() Kind { return KindDepthMismatch }

func (e *DepthMismatchError) Details() string {
	return e.Error() + "\nmap:\n" + dumper.Sdump(e.Map)
}

// UnresolvedParentError 通配符的父路径在源数据中不可读
type UnresolvedParentError struct {
	Destination string
	Source      string
	Parent      string
	Tree        any
	Err         error
}

func (e *UnresolvedParentError) Error() string {
	return fmt.Sprintf("unresolved parent '%s' of '%s' -> '%s': %v", e.Parent, e.Source, e.Destination, e.Err)
}

func (e *UnresolvedParentError) Is(target error) bool { return target == ErrUnresolvedParent }

func (e *UnresolvedParentError) Unwrap() error { return e.Err }

func (e *UnresolvedParentError) Kind() Kind { return KindUnresolvedParent }

func (e *UnresolvedParentError) Details() string {
	return e.Error() + "\ntree:\n" + dumper.Sdump(e.Tree)
}

// NotAListError 通配符的父节点存在，但不是从 0 开始的连续序列
type NotAListError struct {
	Parent string
	Value  any
	Tree   any
}

func (e *NotAListError) Error() string {
	return fmt.Sprintf("parent '%s' is not a list (got %T)", e.Parent, e.Value)
}

func (e *NotAListError) Is(target error) bool { return target == ErrNotAList }

func (e *NotAListError) Kind() Kind { return KindNotAList }

func (e *NotAListError) Details() string {
	return e.Error() + "\nvalue:\n" + dumper.Sdump(e.Value) + "tree:\n" + dumper.Sdump(e.Tree)
}

// EmptyInputError 映射表或数据树为空
type EmptyInputError struct {
	MapEmpty  bool
	TreeEmpty bool
}

func (e *EmptyInputError) Error() string {
	var parts []string
	if e.MapEmpty {
		parts = append(parts, "map is empty")
	}
	if e.TreeEmpty {
		parts = append(parts, "source tree is empty")
	}
	return "empty input: " + strings.Join(parts, ", ")
}

func (e *EmptyInputError) Is(target error) bool { return target == ErrEmptyInput }

func (e *EmptyInputError) Kind() Kind { return KindEmptyInput }

// DepthLimitError 映射表的通配符嵌套层数超过上限
type DepthLimitError struct {
	Depth int
	Limit int
}

func (e *DepthLimitError) Error() string {
	return fmt.Sprintf("wildcard depth %d exceeds limit %d", e.Depth, e.Limit)
}

func (e *DepthLimitError) Is(target error) bool { return target == ErrDepthLimit }

func (e *DepthLimitError) Kind() Kind { return KindDepthLimit }

// InvalidEntryError 映射的某一侧不是字符串
type InvalidEntryError struct {
	Source      any
	Destination any
}

func (e *InvalidEntryError) Error() string {
	return fmt.Sprintf("invalid entry %#v -> %#v: both sides must be strings", e.Source, e.Destination)
}

// UnreadableEntryError 源路径在数据树中不可读
type UnreadableEntryError struct {
	Source      string
	Destination string
	Err         error
}

func (e *UnreadableEntryError) Error() string {
	return fmt.Sprintf("unreadable entry '%s' -> '%s': %v", e.Source, e.Destination, e.Err)
}

func (e *UnreadableEntryError) Unwrap() error { return e.Err }

// InvalidArrayEntryError 两侧都带通配符但个数不同
type InvalidArrayEntryError struct {
	Source           string
	Destination      string
	SourceDepth      int
	DestinationDepth int
}

func (e *InvalidArrayEntryError) Error() string {
	return fmt.Sprintf("invalid array entry '%s' (depth %d) -> '%s' (depth %d)",
		e.Source, e.SourceDepth, e.Destination, e.DestinationDepth)
}

// UnableToMapError 校验汇总错误，一次列出所有问题
type UnableToMapError struct {
	Invalid      []*InvalidEntryError
	Unreadable   []*UnreadableEntryError
	InvalidArray []*InvalidArrayEntryError
	Map          RawMap
	Tree         any
}

func (e *UnableToMapError) Error() string {
	return fmt.Sprintf("unable to map: %d invalid, %d unreadable, %d inconsistent array entries",
		len(e.Invalid), len(e.Unreadable), len(e.InvalidArray))
}

func (e *UnableToMapError) Is(target error) bool { return target == ErrUnableToMap }

func (e *UnableToMapError) Kind() Kind { return KindUnableToMap }

// Errors 按类别顺序返回所有单项错误
func (e *UnableToMapError) Errors() []error {
	errs := make([]error, 0, len(e.Invalid)+len(e.Unreadable)+len(e.InvalidArray))
	for _, err := range e.Invalid {
		errs = append(errs, err)
	}
	for _, err := range e.Unreadable {
		errs = append(errs, err)
	}
	for _, err := range e.InvalidArray {
		errs = append(errs, err)
	}
	return errs
}

func (e *UnableToMapError) Details() string {
	var b strings.Builder
	b.WriteString(e.Error())
	for _, err := range e.Errors() {
		b.WriteString("\n  - ")
		b.WriteString(err.Error())
	}
	b.WriteString("\nmap:\n")
	b.WriteString(dumper.Sdump(e.Map))
	b.WriteString("tree:\n")
	b.WriteString(dumper.Sdump(e.Tree))
	return b.String()
}

// KindOf 返回错误链中第一个带类别的错误的类别
func KindOf(err error) Kind {
	var kinded interface{ Kind() Kind }
	if errors.As(err, &kinded) {
		return kinded.Kind()
	}
	if errors.Is(err, path.ErrInvalidPath) {
		return KindParse
	}
	return KindUnknown
}

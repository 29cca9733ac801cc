package config

import (
	"fmt"
)

// Operations is the set of generic resource operations an endpoint exposes
type Operations int

const (
	Create Operations = 1 << iota
	Read
	List
	Update
	Delete
)

// AllOperations exposes the full generic handler set
const AllOperations = Create | Read | List | Update | Delete

// OperationNames lists the accepted operation names in flag order
var OperationNames = []string{"Create", "Read", "List", "Update", "Delete"}

func Ops(ops ...string) (Operations, error) {
	var o Operations
	err := o.Add(ops...)
	return o, err
}

func (o *Operations) Set(ops Operations)             { *o |= ops }
func (o *Operations) Clear(ops Operations)           { *o &= ^ops }
func (o Operations) IsSupported(ops Operations) bool { return o&ops != 0 }

// Only returns the operations of o that are also in ops
func (o Operations) Only(ops Operations) Operations { return o & ops }

// Without returns the operations of o that are not in ops
func (o Operations) Without(ops Operations) Operations { return o &^ ops }

func (o *Operations) Add(ops ...string) error {
	for _, op := range ops {
		switch op {
		case "Create":
			o.Set(Create)
		case "Read":
			o.Set(Read)
		case "List":
			o.Set(List)
		case "Update":
			o.Set(Update)
		case "Delete":
			o.Set(Delete)
		default:
			return fmt.Errorf("invalid operation: %s", op)
		}
	}
	return nil
}

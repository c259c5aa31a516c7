package mpobj_test

import (
	"errors"
	"fmt"

	"github.com/andreyvit/mpobj"
)

func ExampleBuild() {
	a := mpobj.NewArena()
	defer a.Release()

	type Item struct {
		Name string
		Qty  int
		Tags []string
	}
	v, err := mpobj.Build(a, Item{Name: "apple", Qty: 3, Tags: []string{"fruit"}})
	fmt.Println(v, err)

	item, err := mpobj.As[Item](v)
	fmt.Printf("%+v %v\n", item, err)
	// Output:
	// ["apple", 3, ["fruit"]] <nil>
	// {Name:apple Qty:3 Tags:[fruit]} <nil>
}

func ExampleCopy() {
	short := mpobj.NewArena()
	long := mpobj.NewArena()
	defer long.Release()

	v := short.NewMap(mpobj.Pair{Key: short.NewString("k"), Val: short.NewArray(mpobj.Int(-1), mpobj.Float(0.5))})
	kept := mpobj.Copy(long, v)
	short.Release()

	fmt.Println(v)
	fmt.Println(kept)
	// Output:
	// <released>
	// {"k"=>[-1, 0.5]}
}

func ExampleAs() {
	_, err := mpobj.As[uint8](mpobj.Int(300))
	fmt.Println(err)
	fmt.Println(errors.Is(err, mpobj.ErrTypeMismatch))
	// Output:
	// mpobj: cannot convert positive integer into uint8, wanted number within uint8 range: 300 is out of range
	// true
}

func ExampleDecode() {
	tree, err := mpobj.Decode([]byte{0x82, 0xa1, 'a', 0x01, 0xa1, 'b', 0xc4, 0x01, 0xff})
	if err != nil {
		panic(err)
	}
	defer tree.Release()
	fmt.Print(mpobj.Dump(tree.Value, mpobj.DumpKinds))
	// Output:
	// (map) {
	//   (string) "a" => (positive integer) 1
	//   (string) "b" => (binary) b"\xff"
	// }
}

package jpool_test

import (
	"fmt"

	"github.com/dhawalhost/jpool"
)

func ExampleDecode() {
	p, err := jpool.Decode([]byte(`{"store":{"books":[{"title":"Go"},{"title":"C"}]}}`))
	if err != nil {
		fmt.Println(err)
		return
	}
	books := p.RootValue().Get("store.books")
	fmt.Println(books.Len(), books.Get("[1].title").String())
	// Output: 2 C
}

func ExamplePool_Decode() {
	buf := make([]jpool.NarrowNode, 4)
	p, _ := jpool.NewPoolWithBuffer(buf)

	fmt.Println(p.Decode([]byte(`[1,2,3]`)))
	fmt.Println(p.Decode([]byte(`[1,2,3,4]`)))
	fmt.Println(p.Decode([]byte(`[1,2,]`)))
	// Output:
	// <nil>
	// jpool: allocation failed at offset 8: need 5 nodes, buffer holds 4: jpool: pool exhausted
	// jpool: syntax error at offset 5: unexpected character ']'
}

func ExamplePool_Pretty() {
	p, _ := jpool.DecodeString(`{"name":"jpool","tags":["json","arena"]}`)
	root, _ := p.Root()
	out, _ := p.Pretty(root)
	fmt.Println(string(out))
	// Output:
	// {
	//   "name": "jpool",
	//   "tags": [
	//     "json",
	//     "arena"
	//   ]
	// }
}

func ExamplePool_NewObject() {
	p, _ := jpool.NewMedium(0)
	name, _ := p.NewString("name")
	value, _ := p.NewString(`say "hi"`)
	obj, _ := p.NewObject(name, value)
	_ = p.SetRoot(obj)

	out, _ := p.Ugly(obj)
	fmt.Println(string(out))
	fmt.Println(p.RootValue().Get("name").String())
	// Output:
	// {"name":"say \"hi\""}
	// say "hi"
}

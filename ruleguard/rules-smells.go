package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

func smells(m dsl.Matcher) {
	// Two consecutive guard-ifs returning the same value: mergeable with ||
	//   if a { return err }
	//   if b { return err }
	// => if a || b { return err }
	m.Match(`if $c1 { return $ret }; if $c2 { return $ret }`).
		Report(`two consecutive guards return the same value; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { return $ret }`)

	// Same pattern with continue inside loops.
	m.Match(`if $c1 { continue }; if $c2 { continue }`).
		Report(`two consecutive continues; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { continue }`)

	// context.Background() inside a handler usually means a dropped request
	// context; tool and model calls must inherit the caller's deadline.
	m.Match(`$h.Execute(context.Background(), $*_)`).
		Report(`Execute with context.Background() ignores the request deadline; pass the inbound ctx`)

	// json.NewDecoder(...).Decode without checking the error hides malformed
	// bodies from callers.
	m.Match(`json.NewDecoder($r).Decode($v)`).
		Report(`unchecked Decode result; malformed request bodies go unnoticed`)
}

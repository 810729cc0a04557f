// Package manifest declares bots in YAML: routes with canned replies and state
// changes, a default reply, and fixtures (cases) that pin the routing of sample
// updates. It backs the stater CLI and lets routing be reviewed without Go code.
//
//	name: signup
//	default:
//	  reply: "Send /start to begin."
//	routes:
//	  - name: start
//	    command: start
//	    state: <default>
//	    reply: "What is your name?"
//	    set_state: asking_name
//	  - name: name
//	    kind: message
//	    state: asking_name
//	    when: {has_text: true}
//	    reply: "Nice to meet you, {text}."
//	    reset: true
//	cases:
//	  - update: {text: /start}
//	    expect: start
//	    expect_state: asking_name
package manifest

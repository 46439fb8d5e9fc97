package fps

import "github.com/jjudge-oj/fps-import/types"

// languageAliases maps FPS language names to the judge's canonical
// identifiers before template insertion.
var languageAliases = map[string]string{
	"Python": "Python3",
}

// AssembleTemplates merges per-language prepend/body/append fragments into a
// single submittable template per language, always in that fixed order with
// newline separators. A language that declares only a prepend or append still
// produces an entry with an empty middle line. Languages appear in the order
// their first fragment was declared.
func AssembleTemplates(fragments []types.TemplateFragment) map[string]string {
	if len(fragments) == 0 {
		return nil
	}

	type parts struct {
		prepend string
		body    string
		append_ string
	}

	var order []string
	byLanguage := make(map[string]*parts)
	for _, fragment := range fragments {
		p, ok := byLanguage[fragment.Language]
		if !ok {
			p = &parts{}
			byLanguage[fragment.Language] = p
			order = append(order, fragment.Language)
		}
		switch fragment.Role {
		case types.RolePrepend:
			p.prepend = fragment.Code
		case types.RoleBody:
			p.body = fragment.Code
		case types.RoleAppend:
			p.append_ = fragment.Code
		}
	}

	templates := make(map[string]string, len(order))
	for _, language := range order {
		p := byLanguage[language]
		judgeLanguage := language
		if alias, ok := languageAliases[language]; ok {
			judgeLanguage = alias
		}
		templates[judgeLanguage] = p.prepend + "\n" + p.body + "\n" + p.append_
	}
	return templates
}

package analyzer

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/gdprscan/internal/model"
	"github.com/nao1215/gdprscan/internal/textutil"
)

// clusterContainers are the ancestors that delimit a form rendered without
// a <form> element.
const clusterContainers = "fieldset, section, article, aside, footer, div"

// formTypeKeywords are tried in order; the first type with a match wins.
// Search and login are decided on structure first, see classifyForm.
var formTypeKeywords = []struct {
	kind     model.FormType
	keywords []string
}{
	{model.FormSearch, []string{"search", "suche", "suchen", "rechercher", "recherche", "buscar", "búsqueda", "cerca", "zoeken", "pesquisar", "szukaj"}},
	{model.FormLogin, []string{"login", "log in", "sign in", "signin", "anmelden", "einloggen", "connexion", "se connecter", "iniciar sesión", "accedi", "inloggen", "entrar", "zaloguj"}},
	{model.FormRegistration, []string{"register", "registration", "sign up", "signup", "create account", "create an account", "registrieren", "konto erstellen", "inscription", "créer un compte", "registro", "crear cuenta", "registrati", "registreren", "cadastro", "criar conta", "zarejestruj", "rejestracja"}},
	{model.FormCheckout, []string{"checkout", "payment", "billing", "shipping", "card number", "kasse", "bezahlen", "zahlung", "paiement", "commande", "pago", "pagamento", "afrekenen", "płatność", "zamówienie"}},
	{model.FormNewsletter, []string{"newsletter", "subscribe", "mailing list", "abonnieren", "s'abonner", "suscribirse", "suscríbete", "iscriviti", "nieuwsbrief", "assinar", "subskrybuj"}},
	{model.FormContact, []string{"contact", "kontakt", "get in touch", "message", "nachricht", "contacto", "contatto", "contatti", "bericht", "mensagem", "wiadomość"}},
	{model.FormComment, []string{"comment", "reply", "kommentar", "commentaire", "comentario", "commento", "reactie", "komentarz"}},
}

var consentCheckboxKeywords = []string{
	"consent", "i agree", "agree", "accept", "privacy", "terms", "gdpr",
	"einwilligung", "einverstanden", "zustimmen", "datenschutz",
	"consentement", "j'accepte", "accepte",
	"consentimiento", "acepto", "doy mi consentimiento",
	"acconsento", "consenso", "accetto",
	"toestemming", "akkoord", "ga akkoord",
	"consentimento", "aceito", "concordo",
	"zgoda", "wyrażam zgodę", "akceptuję",
}

var marketingCheckboxKeywords = []string{
	"newsletter", "marketing", "offers", "promotions", "promotional", "special deals", "partners", "news and updates",
	"werbung", "angebote", "aktionen",
	"offres", "promotions commerciales",
	"ofertas", "promociones", "publicidad",
	"offerte", "promozioni",
	"aanbiedingen", "nieuwsbrief",
	"promoções", "novidades",
	"oferty", "promocje",
}

// personalFieldPattern matches field names that hold personal data.
var personalFieldPattern = regexp.MustCompile(`(?i)e-?mail|name|phone|tel|mobile|address|street|zip|postal|city|birth|company|message|comment`)

// emailFieldPattern matches field names of email inputs declared as text.
var emailFieldPattern = regexp.MustCompile(`(?i)e-?mail`)

// ignoredInputTypes carry no user input.
var ignoredInputTypes = map[string]bool{
	"hidden": true,
	"submit": true,
	"button": true,
	"reset":  true,
	"image":  true,
}

// ParseForms extracts the forms of an HTML document. Native <form>
// elements win; only a page without any falls back to JS clusters: email
// inputs inspected through their nearest container.
func ParseForms(doc *goquery.Document, pageURL string) []model.FormInfo {
	var forms []model.FormInfo

	doc.Find("form").Each(func(_ int, s *goquery.Selection) {
		forms = append(forms, inspectForm(doc, s, pageURL, model.SourceNative))
	})
	if len(forms) > 0 {
		return forms
	}

	var containers []*goquery.Selection
	doc.Find(`input[type="email"], input[name*="email"], input[name*="mail"]`).Each(func(_ int, s *goquery.Selection) {
		container := s.Closest(clusterContainers)
		if container.Length() == 0 {
			container = s.Parent()
		}
		for _, c := range containers {
			if c.IsSelection(container) {
				return
			}
		}
		containers = append(containers, container)
	})
	for _, c := range containers {
		forms = append(forms, inspectForm(doc, c, pageURL, model.SourceJSCluster))
	}
	return forms
}

func inspectForm(doc *goquery.Document, s *goquery.Selection, pageURL string, source model.FormSource) model.FormInfo {
	form := model.FormInfo{
		PageURL: pageURL,
		Source:  source,
		Action:  strings.TrimSpace(s.AttrOr("action", "")),
	}

	var passwords int
	var hasSearchInput, personal bool
	s.Find("input, select, textarea").Each(func(_ int, f *goquery.Selection) {
		kind := strings.ToLower(f.AttrOr("type", "text"))
		if goquery.NodeName(f) == "input" && ignoredInputTypes[kind] {
			return
		}

		name := fieldName(f)
		switch {
		case kind == "checkbox":
			label := fieldLabel(doc, f) + " " + name
			_, checked := f.Attr("checked")
			if textutil.ContainsAny(label, marketingCheckboxKeywords) {
				if checked {
					form.HasPreCheckedMarketing = true
				}
			} else if textutil.ContainsAny(label, consentCheckboxKeywords) {
				form.HasConsentCheckbox = true
			}
		case kind == "password":
			passwords++
		case kind == "search":
			hasSearchInput = true
		case kind == "email" || emailFieldPattern.MatchString(name):
			form.HasEmailField = true
		}

		if name != "" {
			form.Fields = append(form.Fields, name)
			if kind != "checkbox" && personalFieldPattern.MatchString(name) {
				personal = true
			}
		}
		if goquery.NodeName(f) == "textarea" {
			personal = true
		}
	})

	s.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		target := a.AttrOr("href", "") + " " + a.Text()
		if textutil.ContainsAny(target, privacyLinkKeywords) {
			form.HasPrivacyLink = true
			return false
		}
		return true
	})

	form.Type = classifyForm(s, form, passwords, hasSearchInput)
	form.CollectsData = collectsData(form.Type, form.HasEmailField || personal)
	return form
}

// fieldName identifies a form field by name, id or type.
func fieldName(f *goquery.Selection) string {
	for _, attr := range []string{"name", "id", "autocomplete"} {
		if v := strings.TrimSpace(f.AttrOr(attr, "")); v != "" {
			return v
		}
	}
	if goquery.NodeName(f) == "input" {
		return strings.ToLower(f.AttrOr("type", "text"))
	}
	return goquery.NodeName(f)
}

// fieldLabel returns the label text of a form control.
func fieldLabel(doc *goquery.Document, f *goquery.Selection) string {
	if id := f.AttrOr("id", ""); id != "" {
		var text string
		doc.Find("label[for]").EachWithBreak(func(_ int, l *goquery.Selection) bool {
			if l.AttrOr("for", "") == id {
				text = l.Text()
				return false
			}
			return true
		})
		if strings.TrimSpace(text) != "" {
			return text
		}
	}
	if l := f.Closest("label"); l.Length() > 0 {
		return l.Text()
	}
	if v := f.AttrOr("aria-label", ""); v != "" {
		return v
	}
	return f.Parent().Text()
}

// classifyForm infers the purpose of a form.
func classifyForm(s *goquery.Selection, form model.FormInfo, passwords int, hasSearchInput bool) model.FormType {
	if hasSearchInput || strings.EqualFold(s.AttrOr("role", ""), "search") {
		return model.FormSearch
	}

	text := strings.Join([]string{
		s.AttrOr("id", ""),
		s.AttrOr("class", ""),
		s.AttrOr("name", ""),
		s.AttrOr("aria-label", ""),
		form.Action,
		strings.Join(form.Fields, " "),
		s.Text(),
	}, " ")
	text = strings.NewReplacer("-", " ", "_", " ", "/", " ").Replace(text)

	matches := func(kind model.FormType) bool {
		for _, k := range formTypeKeywords {
			if k.kind == kind {
				return textutil.HasAnyPhrase(text, k.keywords)
			}
		}
		return false
	}

	if len(form.Fields) <= 1 && matches(model.FormSearch) {
		return model.FormSearch
	}
	if passwords == 1 && (matches(model.FormLogin) || !matches(model.FormRegistration)) {
		return model.FormLogin
	}
	if passwords >= 2 {
		return model.FormRegistration
	}
	for _, k := range formTypeKeywords {
		if k.kind == model.FormSearch || k.kind == model.FormLogin {
			continue
		}
		if textutil.HasAnyPhrase(text, k.keywords) {
			return k.kind
		}
	}
	return model.FormOther
}

func collectsData(kind model.FormType, personal bool) bool {
	switch kind {
	case model.FormSearch, model.FormLogin:
		return false
	case model.FormOther:
		return personal
	default:
		return true
	}
}

// formSignature identifies a form across pages, such as a footer newsletter
// form repeated on every page.
func formSignature(f model.FormInfo) string {
	return string(f.Type) + "|" + f.Action + "|" + strings.Join(f.Fields, ",")
}

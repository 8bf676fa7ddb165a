package analyzer

import (
	"context"
	"net/url"
	"regexp"
	"sync"
	"unicode/utf8"

	"github.com/nao1215/gdprscan/internal/browser"
	"github.com/nao1215/gdprscan/internal/model"
	"github.com/nao1215/gdprscan/internal/textutil"
	"github.com/nao1215/gdprscan/internal/urlutil"
)

// minPolicyTextLength is the shortest policy text worth analyzing.
// Anything shorter is a stub, a cookie wall or an error page.
const minPolicyTextLength = 100

// privacyLinkSelectors find policy links by their target.
var privacyLinkSelectors = []string{
	`a[href*="privacy"]`,
	`a[href*="datenschutz"]`,
	`a[href*="dsgvo"]`,
	`a[href*="confidentialite"]`,
	`a[href*="donnees-personnelles"]`,
	`a[href*="rgpd"]`,
	`a[href*="privacidad"]`,
	`a[href*="privacidade"]`,
	`a[href*="informativa"]`,
	`a[href*="privacybeleid"]`,
	`a[href*="privacyverklaring"]`,
	`a[href*="prywatnosc"]`,
	`a[href*="prywatnosci"]`,
	`a[href*="gdpr"]`,
}

// privacyLinkKeywords find policy links by their text.
var privacyLinkKeywords = []string{
	"privacy policy", "privacy notice", "privacy statement", "privacy",
	"datenschutzerklärung", "datenschutzhinweise", "datenschutz",
	"politique de confidentialité", "confidentialité", "données personnelles",
	"política de privacidad", "aviso de privacidad", "privacidad",
	"informativa sulla privacy", "informativa privacy",
	"privacyverklaring", "privacybeleid",
	"política de privacidade", "privacidade",
	"polityka prywatności", "prywatność",
	"gdpr", "dsgvo", "rgpd",
}

// privacyElementPatterns detect policy elements in folded text: lower case,
// diacritics removed. Each covers EN, DE, FR, ES, IT, NL, PT and PL.
var privacyElementPatterns = map[model.PrivacyElement]*regexp.Regexp{
	model.ElementController: regexp.MustCompile(
		`data controller|controller (of|for|is)|responsible for (the )?processing|` +
			`verantwortliche|verantwortlicher|verantwortliche stelle|` +
			`responsable (du|de|des) traitement|responsable del tratamiento|` +
			`titolare del trattamento|verwerkingsverantwoordelijke|` +
			`responsavel pelo tratamento|administrator(em)? (twoich )?danych`),
	model.ElementDPOContact: regexp.MustCompile(
		`data protection officer|\bdpo\b|datenschutzbeauftragte|` +
			`delegue a la protection des donnees|\bdpd\b|delegado de proteccion de datos|` +
			`responsabile della protezione dei dati|functionaris voor gegevensbescherming|` +
			`encarregado (de|da|pela) protecao de dados|inspektor(a|em)? ochrony danych`),
	model.ElementPurpose: regexp.MustCompile(
		`purposes? of (the )?processing|we (use|process|collect) (your )?(personal )?(data|information) (to|for)|purposes? for which|` +
			`zweck(e)? der (verarbeitung|datenverarbeitung)|verarbeitungszweck|` +
			`finalites? du traitement|finalidad(es)? del tratamiento|finalita del trattamento|` +
			`doeleinden|doel(en)? van de verwerking|finalidades? do tratamento|` +
			`cel(e|u)? przetwarzania`),
	model.ElementLegalBasis: regexp.MustCompile(
		`legal basis|lawful basis|legal grounds?|legitimate interests?|art(icle|\.|ikel)? ?6|` +
			`rechtsgrundlage|berechtigte(s|n)? interesse|` +
			`base (legale|juridique)|interet legitime|` +
			`base (legal|juridica)|base legitimadora|interes legitimo|` +
			`base giuridica|interesse legittimo|` +
			`rechtsgrond|grondslag|gerechtvaardigd belang|` +
			`fundamento (legal|juridico)|interesse legitimo|` +
			`podstaw(a|y|ie) prawn|prawnie uzasadnion`),
	model.ElementRetention: regexp.MustCompile(
		`retention|retain|how long we (keep|store)|stored for|storage period|` +
			`speicherdauer|aufbewahrungsfrist|dauer der speicherung|` +
			`duree de conservation|conservons|` +
			`plazo de conservacion|periodo de conservacion|conservaremos|` +
			`periodo di conservazione|conservati per|` +
			`bewaartermijn|bewaren wij|` +
			`prazo de conservacao|periodo de retencao|` +
			`okres przechowywania|przechowywane (przez|do)`),
	model.ElementUserRights: regexp.MustCompile(
		`right (of|to) access|right to (erasure|rectification|be forgotten|data portability|object|restrict)|your rights|data subject rights|` +
			`recht auf (auskunft|berichtigung|loschung|einschrankung|datenubertragbarkeit)|ihre rechte|betroffenenrechte|` +
			`droit d'acces|droit de rectification|droit (a l'effacement|d'opposition)|vos droits|` +
			`derecho (de acceso|de rectificacion|de supresion|de oposicion)|sus derechos|` +
			`diritto (di accesso|di rettifica|alla cancellazione|di opposizione)|diritti dell'interessato|` +
			`recht op (inzage|rectificatie|verwijdering|bezwaar)|uw rechten|` +
			`direito (de acesso|de retificacao|ao apagamento|de oposicao)|seus direitos|` +
			`prawo (dostepu|do sprostowania|do usuniecia|sprzeciwu)|twoje prawa`),
	model.ElementComplaintRight: regexp.MustCompile(
		`lodge a complaint|right to complain|supervisory authority|data protection authority|` +
			`beschwerderecht|recht auf beschwerde|aufsichtsbehorde|` +
			`reclamation aupres|introduire une reclamation|\bcnil\b|autorite de controle|` +
			`presentar una reclamacion|autoridad de control|\baepd\b|` +
			`proporre reclamo|garante per la protezione|autorita di controllo|` +
			`klacht indienen|autoriteit persoonsgegevens|` +
			`apresentar reclamacao|autoridade de controlo|\bcnpd\b|` +
			`skarg(a|i|e) do|organu nadzorczego|\buodo\b`),
	model.ElementThirdPartySharing: regexp.MustCompile(
		`third part(y|ies)|share (your )?(personal )?(data|information) with|disclose|recipients|processors?\b|` +
			`an dritte|weitergabe|empfanger|auftragsverarbeiter|` +
			`\btiers\b|destinataires|sous-traitants?|` +
			`terceros|destinatarios|encargados del tratamiento|` +
			`terze parti|destinatari|responsabili del trattamento|` +
			`derden|ontvangers|verwerkers|` +
			`terceiros|subcontratantes|` +
			`podmiot(y|om)? trzec|odbiorc(a|y|ami)`),
	model.ElementInternationalTransfers: regexp.MustCompile(
		`international transfers?|transfer(red)? (outside|to (third )?countries)|third countr(y|ies)|outside (of )?the (eu|eea|european)|` +
			`standard contractual clauses|adequacy decision|` +
			`drittland|drittlander|drittstaat|ausserhalb (der|des) (eu|ewr|europaischen)|standardvertragsklauseln|` +
			`pays tiers|hors de l'(ue|union|eee)|clauses contractuelles types|` +
			`transferencias? internacional(es)?|paises terceros|fuera del (eee|espacio)|clausulas contractuales tipo|` +
			`trasferiment(o|i) (extra-ue|verso paesi|all'estero)|paesi terzi|` +
			`doorgifte|derde landen|buiten de (eu|eer)|` +
			`transferencias? internaciona(l|is)|paises terceiros|` +
			`panstw(a|ach)? trzeci|poza (eog|ue|europejski)`),
}

// PrivacyPolicyAnalyzer finds the privacy policy and checks its content
// for the information required by GDPR Art. 13.
type PrivacyPolicyAnalyzer struct {
	probe

	mu   sync.Mutex
	info model.PrivacyPolicyInfo
}

// NewPrivacyPolicyAnalyzer creates a privacy policy analyzer.
func NewPrivacyPolicyAnalyzer(o Options) *PrivacyPolicyAnalyzer {
	return &PrivacyPolicyAnalyzer{probe: newProbe(NamePrivacy, o)}
}

// Name returns the analyzer name.
func (a *PrivacyPolicyAnalyzer) Name() string { return NamePrivacy }

// Reset clears the policy info.
func (a *PrivacyPolicyAnalyzer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.info = model.PrivacyPolicyInfo{}
}

// OnBeforeConsent looks for a policy link on the landing page.
func (a *PrivacyPolicyAnalyzer) OnBeforeConsent(ctx context.Context, page browser.Page, sc *model.ScanContext) {
	link := a.findLink(ctx, page, sc)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.info = model.PrivacyPolicyInfo{Found: link != "", URL: link}
}

func (a *PrivacyPolicyAnalyzer) findLink(ctx context.Context, page browser.Page, sc *model.ScanContext) string {
	base, err := url.Parse(page.URL())
	if err != nil || base.Host == "" {
		return ""
	}

	for _, sel := range privacyLinkSelectors {
		for _, el := range a.query(ctx, page, sc, sel) {
			if link := urlutil.Resolve(base, el.Attr("href")); link != "" {
				return link
			}
		}
	}

	for _, el := range a.query(ctx, page, sc, "a[href]") {
		name := el.Text + " " + el.Label
		if !textutil.ContainsAny(name, privacyLinkKeywords) {
			continue
		}
		if link := urlutil.Resolve(base, el.Attr("href")); link != "" {
			return link
		}
	}
	return ""
}

func (a *PrivacyPolicyAnalyzer) query(ctx context.Context, page browser.Page, sc *model.ScanContext, selector string) []browser.Element {
	pctx, cancel := a.context(ctx)
	defer cancel()
	elements, err := page.Query(pctx, selector)
	if err != nil {
		a.failed(sc, "query "+selector, err)
		return nil
	}
	return elements
}

// OnAnalyze loads the policy and checks its content.
func (a *PrivacyPolicyAnalyzer) OnAnalyze(ctx context.Context, page browser.Page, sc *model.ScanContext) {
	a.mu.Lock()
	link := a.info.URL
	a.mu.Unlock()
	if link == "" {
		return
	}

	pctx, cancel := a.context(ctx)
	defer cancel()
	if _, err := page.Navigate(pctx, link); err != nil {
		a.unavailable(sc, "navigate "+link, err)
		return
	}
	document, err := page.HTML(pctx)
	if err != nil {
		a.failed(sc, "html", err)
		return
	}

	content, ok := AnalyzePolicyText(ExtractText(document))
	if !ok {
		a.logger.Debug("privacy policy too short to analyze",
			"analyzer", a.name,
			"url", link,
			"length", content.TextLength,
		)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.info.ContentAnalyzed = ok
	a.info.Content = content
}

// AnalyzePolicyText checks policy text for each element. It reports false,
// with only TextLength set, when the text is too short to analyze.
func AnalyzePolicyText(text string) (model.PrivacyPolicyContent, bool) {
	content := model.PrivacyPolicyContent{TextLength: utf8.RuneCountInString(text)}
	if content.TextLength < minPolicyTextLength {
		return content, false
	}

	folded := textutil.Fold(text)
	for _, e := range model.PrivacyElements {
		if privacyElementPatterns[e].MatchString(folded) {
			content.Set(e, true)
			content.DetectedElements = append(content.DetectedElements, string(e))
		}
	}
	for _, e := range model.RequiredPrivacyElements {
		if !content.Has(e) {
			content.MissingElements = append(content.MissingElements, string(e))
		}
	}
	return content, true
}

// Info returns the policy info.
func (a *PrivacyPolicyAnalyzer) Info() model.PrivacyPolicyInfo {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.info
}

// Contribute writes the policy info.
func (a *PrivacyPolicyAnalyzer) Contribute(r *model.ScanResult) {
	r.PrivacyPolicy = a.Info()
}

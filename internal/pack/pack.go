// Package pack assembles a deployable SAP Integration Suite package from an
// already-serialized iFlow document. No XML is synthesized here; the
// assembler only lays files out and zips them.
package pack

import (
	"archive/zip"
	"bytes"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/skarpdev/iflowgen/pkg/api"
)

// Input carries everything the assembler needs.
type Input struct {
	// Name is the package and iFlow name. It is sanitized for use in
	// file paths and bundle headers.
	Name string

	// Version is the bundle version; defaults to 1.0.0.
	Version string

	// Description goes into metainfo.prop.
	Description string

	// XML is the serialized iFlow document.
	XML []byte

	// Scripts maps groovy file name to script body.
	Scripts map[string]string

	// EDMX maps edmx file name to schema content.
	EDMX map[string]string
}

const defaultVersion = "1.0.0"

// Assemble produces the path -> content map for one package.
func Assemble(in Input) (map[string][]byte, error) {
	if len(in.XML) == 0 {
		return nil, fmt.Errorf("assemble %s: %w", in.Name, api.ErrEmptyGraph)
	}
	name := SanitizeName(in.Name)
	version := in.Version
	if version == "" {
		version = defaultVersion
	}

	files := make(map[string][]byte)
	files["META-INF/MANIFEST.MF"] = manifest(name, version)
	files[".project"] = projectFile(name)
	files["metainfo.prop"] = metainfo(in.Description)
	files["src/main/resources/parameters.prop"] = []byte(parametersProp)
	files["src/main/resources/parameters.propdef"] = []byte(parametersPropdef)
	files["src/main/resources/scenarioflows/integrationflow/"+name+".iflw"] = in.XML
	for file, body := range in.Scripts {
		files[path.Join("src/main/resources/script", path.Base(file))] = []byte(body)
	}
	for file, body := range in.EDMX {
		files[path.Join("src/main/resources/edmx", path.Base(file))] = []byte(body)
	}
	return files, nil
}

// Archive zips the file map. Entries are written in sorted path order so
// the archive bytes are reproducible.
func Archive(files map[string][]byte) ([]byte, error) {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range paths {
		w, err := zw.Create(p)
		if err != nil {
			zw.Close()
			return nil, &api.PackagingError{Path: p, Err: err}
		}
		if _, err := w.Write(files[p]); err != nil {
			zw.Close()
			return nil, &api.PackagingError{Path: p, Err: err}
		}
	}
	if err := zw.Close(); err != nil {
		return nil, &api.PackagingError{Path: "archive", Err: err}
	}
	return buf.Bytes(), nil
}

// SanitizeName reduces a display name to a bundle-safe identifier.
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "IntegrationFlow"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		case r == ' ', r == '.':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "IntegrationFlow"
	}
	return b.String()
}

func manifest(name, version string) []byte {
	var b strings.Builder
	b.WriteString("Manifest-Version: 1.0\r\n")
	b.WriteString("Bundle-ManifestVersion: 2\r\n")
	b.WriteString("Bundle-Name: " + name + "\r\n")
	b.WriteString("Bundle-SymbolicName: " + name + "; singleton:=true\r\n")
	b.WriteString("Bundle-Version: " + version + "\r\n")
	b.WriteString("SAP-BundleType: IntegrationFlow\r\n")
	b.WriteString("SAP-NodeType: IFLMAP\r\n")
	b.WriteString("SAP-RuntimeProfile: iflmap\r\n")
	b.WriteString("Import-Package: com.sap.esb.application.services.cxf.interceptor,com.sap\r\n")
	b.WriteString(" .esb.security,com.sap.it.op.agent.api,com.sap.it.op.agent.collector.came\r\n")
	b.WriteString(" l,com.sap.it.op.agent.collector.cxf,com.sap.it.op.agent.mpl,javax.jms,ja\r\n")
	b.WriteString(" vax.jws,javax.wsdl,javax.xml.bind.annotation,javax.xml.namespace,javax.x\r\n")
	b.WriteString(" ml.ws,org.apache.camel,org.apache.camel.builder,org.apache.camel.compone\r\n")
	b.WriteString(" nt.cxf,org.apache.camel.model,org.apache.camel.processor,org.apache.came\r\n")
	b.WriteString(" l.processor.aggregate,org.apache.camel.spring.spi,org.apache.commons.log\r\n")
	b.WriteString(" ging,org.apache.cxf.binding,org.apache.cxf.binding.soap,org.apache.cxf.b\r\n")
	b.WriteString(" inding.soap.spring,org.apache.cxf.bus,org.apache.cxf.bus.resource,org.ap\r\n")
	b.WriteString(" ache.cxf.bus.spring,org.apache.cxf.buslifecycle,org.apache.cxf.catalog,o\r\n")
	b.WriteString(" rg.apache.cxf.configuration.jsse,org.apache.cxf.configuration.spring,org\r\n")
	b.WriteString(" .apache.cxf.endpoint,org.apache.cxf.headers,org.apache.cxf.interceptor,o\r\n")
	b.WriteString(" rg.apache.cxf.management.counters,org.apache.cxf.message,org.apache.cxf.\r\n")
	b.WriteString(" phase,org.apache.cxf.resource,org.apache.cxf.service.factory,org.apache.\r\n")
	b.WriteString(" cxf.service.model,org.apache.cxf.transport,org.apache.cxf.transport.comm\r\n")
	b.WriteString(" on.gzip,org.apache.cxf.transport.http,org.apache.cxf.transports.http,org\r\n")
	b.WriteString(" .apache.cxf.workqueue,org.apache.cxf.ws.policy,org.apache.cxf.wsdl11,org\r\n")
	b.WriteString(" .osgi.framework,org.slf4j,org.springframework.beans.factory.config,com.s\r\n")
	b.WriteString(" ap.esb.camel.security.cms,org.apache.camel.spi,com.sap.esb.webservice.au\r\n")
	b.WriteString(" dit.log,com.sap.esb.messaging,com.sap.xi.tra,org.apache.camel.support\r\n")
	b.WriteString("Origin-Bundle-Name: " + name + "\r\n")
	b.WriteString("Origin-Bundle-SymbolicName: " + name + "\r\n")
	b.WriteString("Origin-Bundle-Version: " + version + "\r\n")
	return []byte(b.String())
}

func projectFile(name string) []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8"?>
<projectDescription>
	<name>` + name + `</name>
	<comment></comment>
	<projects>
	</projects>
	<buildSpec>
	</buildSpec>
	<natures>
		<nature>org.eclipse.jdt.core.javanature</nature>
		<nature>com.sap.ide.ifl.project.support.project.nature</nature>
		<nature>com.sap.ide.ifl.bsn</nature>
	</natures>
</projectDescription>
`)
}

func metainfo(description string) []byte {
	description = strings.ReplaceAll(description, "\n", " ")
	return []byte("#Store metainfo properties\ndescription=" + description + "\n")
}

const parametersProp = "#Init\n"

const parametersPropdef = `<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<parameters>
    <param_references/>
</parameters>
`

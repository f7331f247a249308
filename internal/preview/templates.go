package preview

import "html/template"

// The three pages are kept as inline templates rather than a templates
// directory so the binary stays self-contained.

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Feed Folders</title>
    <style>
        body { font-family: Arial, sans-serif; background: #f5f8fa; margin: 0; padding: 0; }
        .container { width: 80%; max-width: 900px; margin: 20px auto; }
        .header { display: flex; justify-content: space-between; align-items: center; margin-bottom: 20px; }
        .search-input { padding: 8px 12px; width: 200px; border: 1px solid #ccc; border-radius: 4px; }
        .search-btn, .toggle-btn { padding: 8px 12px; border: none; background: #1da1f2; color: #fff; border-radius: 4px; cursor: pointer; margin-left: 10px; }
        .folder-list { list-style: none; padding: 0; }
        .folder-item { background: #fff; border: 1px solid #e1e8ed; border-radius: 8px; margin-bottom: 15px; padding: 10px; display: flex; align-items: center; cursor: pointer; }
        .folder-item .info { flex: 1; font-size: 16px; color: #1da1f2; }
        .folder-item .info:hover { text-decoration: underline; }
        .preview-list img { width: 60px; height: 60px; object-fit: cover; border-radius: 4px; margin-left: 15px; }
        .folder-list.grid-view { display: flex; flex-wrap: wrap; gap: 15px; }
        .folder-list.grid-view .folder-item { width: calc(25% - 15px); flex-direction: column; align-items: center; padding: 0; margin-bottom: 15px; }
        .folder-list.grid-view .folder-item .info { width: 100%; text-align: center; padding: 10px 0; border-bottom: 1px solid #e1e8ed; }
        .folder-list.grid-view .folder-item .grid-preview { position: relative; width: 100%; padding-bottom: 75%; overflow: hidden; }
        .folder-list.grid-view .folder-item .grid-preview img { position: absolute; top: 0; left: 0; width: 100%; height: 100%; object-fit: cover; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <form method="get" action="/search" id="searchForm">
                <input type="text" name="q" id="search" class="search-input" placeholder="Search posts...">
                <button type="submit" class="search-btn">Search</button>
                <button type="button" id="toggleView" class="toggle-btn">Toggle view</button>
            </form>
        </div>
        <ul id="folderList" class="folder-list">
            {{range .Folders}}
            <li class="folder-item" onclick="window.location='/feed/{{.Name}}'">
                <div class="info">{{.Name}}</div>
                <div class="preview-list">
                    {{if .Preview}}<img src="{{.Preview}}" alt="preview">{{end}}
                </div>
                <div class="grid-preview" style="display:none; width:100%;">
                    {{if .Preview}}<img src="{{.Preview}}" alt="grid preview">{{end}}
                </div>
            </li>
            {{end}}
        </ul>
    </div>
    <script>
        const toggleBtn = document.getElementById('toggleView');
        const folderList = document.getElementById('folderList');
        toggleBtn.addEventListener('click', () => {
            const items = document.querySelectorAll('.folder-item');
            folderList.classList.toggle('grid-view');
            if (folderList.classList.contains('grid-view')) {
                items.forEach(item => {
                    if (item.querySelector('.preview-list')) item.querySelector('.preview-list').style.display = 'none';
                    if (item.querySelector('.grid-preview')) item.querySelector('.grid-preview').style.display = 'block';
                });
            } else {
                items.forEach(item => {
                    if (item.querySelector('.preview-list')) item.querySelector('.preview-list').style.display = 'flex';
                    if (item.querySelector('.grid-preview')) item.querySelector('.grid-preview').style.display = 'none';
                });
            }
        });
    </script>
</body>
</html>
`))

var feedTemplate = template.Must(template.New("feed").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Feed - {{.Folder}}</title>
    <style>
        body { font-family: Arial, sans-serif; background: #f5f8fa; margin: 0; padding: 0; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .back-link { margin-bottom: 20px; display: inline-block; text-decoration: none; color: #1da1f2; cursor: pointer; }
        .post { background: #fff; border: 1px solid #e1e8ed; border-radius: 8px; margin-bottom: 20px; padding: 15px; }
        .post-title { font-size: 16px; font-weight: bold; margin-bottom: 8px; }
        .post-time { color: #657786; font-size: 12px; margin-bottom: 10px; }
        .post-desc { font-size: 14px; margin-bottom: 10px; }
        .post-images { display: flex; flex-wrap: wrap; gap: 5px; }
        .post-images img { width: calc(50% - 5px); border-radius: 8px; cursor: pointer; }
        #lightboxOverlay { display: none; position: fixed; top: 0; left: 0; width: 100%; height: 100%; background: rgba(0,0,0,0.8); justify-content: center; align-items: center; z-index: 1000; }
        #lightboxOverlay img { max-width: 90%; max-height: 90%; border-radius: 8px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="back-link" onclick="window.location='/'">&larr; Back to folders</div>
        <h2>Feed - {{.Folder}}</h2>
        {{range .Posts}}
        <div class="post">
            {{if .Title}}
            <div class="post-title">{{.Title}}</div>
            {{end}}
            <div class="post-time">{{.Time}}</div>
            <div class="post-desc">{{.Description}}</div>
            <div class="post-images">
                {{range .Images}}
                <img src="{{.}}" alt="Post image" onclick="openLightbox('{{.}}')">
                {{end}}
            </div>
        </div>
        {{end}}
    </div>
    <div id="lightboxOverlay" onclick="closeLightbox()">
        <img id="lightboxImg" src="" alt="">
    </div>
    <script>
        function openLightbox(src) {
            const overlay = document.getElementById('lightboxOverlay');
            const img = document.getElementById('lightboxImg');
            img.src = src;
            overlay.style.display = 'flex';
        }
        function closeLightbox() {
            document.getElementById('lightboxOverlay').style.display = 'none';
        }
    </script>
</body>
</html>
`))

var searchTemplate = template.Must(template.New("search").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Search Results for "{{.Query}}"</title>
    <style>
        body { font-family: Arial, sans-serif; background: #f5f8fa; margin: 0; padding: 0; }
        .container { max-width: 800px; margin: 20px auto; padding: 20px; }
        .back-link { margin-bottom: 20px; display: inline-block; text-decoration: none; color: #1da1f2; cursor: pointer; }
        .result { background: #fff; border: 1px solid #e1e8ed; border-radius: 8px; margin-bottom: 20px; padding: 15px; }
        .result-header { font-size: 14px; color: #657786; margin-bottom: 10px; }
        .result-title { font-size: 16px; font-weight: bold; margin-bottom: 8px; }
        .result-desc { font-size: 14px; margin-bottom: 10px; }
        .result-images { display: flex; flex-wrap: wrap; gap: 5px; }
        .result-images img { width: calc(50% - 5px); border-radius: 8px; cursor: pointer; }
        #lightboxOverlay { display: none; position: fixed; top: 0; left: 0; width: 100%; height: 100%; background: rgba(0,0,0,0.8); justify-content: center; align-items: center; z-index: 1000; }
        #lightboxOverlay img { max-width: 90%; max-height: 90%; border-radius: 8px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="back-link" onclick="window.location='/'">&larr; Back to folders</div>
        <h2>Search Results for "{{.Query}}"</h2>
        {{if .Results}}
            {{range .Results}}
            <div class="result">
                <div class="result-header">Folder: <a href="/feed/{{.Folder}}">{{.Folder}}</a> | {{.Time}}</div>
                {{if .Title}}
                <div class="result-title">{{.Title}}</div>
                {{end}}
                <div class="result-desc">{{.Description}}</div>
                <div class="result-images">
                    {{range .Images}}
                    <img src="{{.}}" alt="Result image" onclick="openLightbox('{{.}}')">
                    {{end}}
                </div>
            </div>
            {{end}}
        {{else}}
            <p>No results found.</p>
        {{end}}
    </div>
    <div id="lightboxOverlay" onclick="closeLightbox()">
        <img id="lightboxImg" src="" alt="">
    </div>
    <script>
        function openLightbox(src) {
            const overlay = document.getElementById('lightboxOverlay');
            const img = document.getElementById('lightboxImg');
            img.src = src;
            overlay.style.display = 'flex';
        }
        function closeLightbox() {
            document.getElementById('lightboxOverlay').style.display = 'none';
        }
    </script>
</body>
</html>
`))
